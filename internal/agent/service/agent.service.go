package service

import (
	"context"
	"fmt"
	"strings"

	"seeksy/internal/agent/model"
	"seeksy/internal/agent/repository"
	"seeksy/pkg/ai"

	"github.com/google/uuid"
)

const (
	historyLimit = 20
	historyMax   = 500
)

// Completer is the slice of the AI gateway the agent needs.
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error)
	Model() string
}

type AgentService struct {
	Repo *repository.MessageRepository
	AI   Completer
}

func NewAgentService(repo *repository.MessageRepository, completer Completer) *AgentService {
	return &AgentService{Repo: repo, AI: completer}
}

const producerPrompt = `You are Seeksy's podcast producer assistant. You help creators plan
episodes, write show notes, outline interview questions, suggest titles
and clip moments, and grow their audience. Be practical and concise.
When you suggest a list, keep it to the most useful few items.`

// Chat continues a conversation, starting a new one when conversationID is
// empty. The user message is stored only once the AI gateway has replied.
func (s *AgentService) Chat(ctx context.Context, userID string, req model.ChatRequest) (*model.ChatResponse, error) {
	conversationID := req.ConversationID
	history := []model.Message{}
	if conversationID == "" {
		conversationID = uuid.NewString()
	} else {
		var err error
		history, err = s.Repo.Recent(ctx, conversationID, userID, historyLimit)
		if err != nil {
			return nil, err
		}
	}

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: producerPrompt})
	for _, m := range history {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: req.Message})

	reply, err := s.AI.Complete(ctx, messages, ai.Options{Temperature: 0.7, MaxTokens: 1500})
	if err != nil {
		return nil, fmt.Errorf("agent chat: %w", err)
	}

	userMsg := &model.Message{ConversationID: conversationID, UserID: userID, Role: ai.RoleUser, Content: req.Message}
	if err := s.Repo.Save(ctx, userMsg); err != nil {
		return nil, err
	}
	replyMsg := &model.Message{ConversationID: conversationID, UserID: userID, Role: ai.RoleAssistant, Content: reply}
	if err := s.Repo.Save(ctx, replyMsg); err != nil {
		return nil, err
	}
	return &model.ChatResponse{ConversationID: conversationID, Reply: *replyMsg}, nil
}

func (s *AgentService) History(ctx context.Context, conversationID, userID string) ([]model.Message, error) {
	return s.Repo.Recent(ctx, conversationID, userID, historyMax)
}

const seoPrompt = `You are an SEO specialist for podcasts and video. Explain how well the
episode metadata below will perform in search on podcast apps, YouTube and
Google. Cover title clarity, keyword coverage and description structure,
then give a rewritten title and three concrete improvements. Use short
markdown sections.`

// ExplainSEO returns an AI explanation of the metadata's search strengths
// and weaknesses. Nothing is stored.
func (s *AgentService) ExplainSEO(ctx context.Context, req model.SEORequest) (*model.SEOResponse, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Target keywords: %s\n", strings.Join(req.Keywords, ", "))
	}

	explanation, err := s.AI.Complete(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: seoPrompt},
		{Role: ai.RoleUser, Content: b.String()},
	}, ai.Options{Temperature: 0.3, MaxTokens: 1000})
	if err != nil {
		return nil, fmt.Errorf("seo explanation: %w", err)
	}
	return &model.SEOResponse{Explanation: explanation, Model: s.AI.Model()}, nil
}
