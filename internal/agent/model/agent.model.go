package model

import "time"

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type ChatRequest struct {
	ConversationID string `json:"conversation_id" validate:"omitempty,uuid"`
	Message        string `json:"message" validate:"required,max=8000"`
}

type ChatResponse struct {
	ConversationID string  `json:"conversation_id"`
	Reply          Message `json:"reply"`
}

type SEORequest struct {
	Title       string   `json:"title" validate:"required,max=300"`
	Description string   `json:"description" validate:"max=5000"`
	Keywords    []string `json:"keywords" validate:"max=30,dive,max=100"`
}

type SEOResponse struct {
	Explanation string `json:"explanation"`
	Model       string `json:"model"`
}
