package handler

import (
	"errors"
	"io"
	"net/http"

	"seeksy/internal/upload/model"
	"seeksy/internal/upload/service"
	"seeksy/middleware"
	"seeksy/pkg/respond"
)

const formMemory = 32 << 20

type UploadHandler struct {
	Service *service.UploadService
}

func NewUploadHandler(service *service.UploadService) *UploadHandler {
	return &UploadHandler{Service: service}
}

// Upload accepts a multipart form with a single "file" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		http.Error(w, "Missing bucket parameter", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Could not read file", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	up, err := h.Service.Upload(r.Context(), userID, bucket, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, up)
}
