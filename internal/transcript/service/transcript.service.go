package service

import (
	"context"
	"fmt"
	"strings"

	"seeksy/internal/transcript/model"
	"seeksy/internal/transcript/repository"
	"seeksy/pkg/apperr"
	"seeksy/pkg/captions"
	"seeksy/pkg/logger"
	"seeksy/pkg/speech"
	"seeksy/socket"
)

// Notifier pushes realtime events to a user's open sockets.
type Notifier interface {
	Notify(userID, eventType string, payload any)
}

// Transcriber turns hosted audio into timed text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL, language string) (*speech.Result, error)
}

type TranscriptService struct {
	Repo   *repository.TranscriptRepository
	Speech Transcriber
	Hub    Notifier
}

func NewTranscriptService(repo *repository.TranscriptRepository, speech Transcriber, hub Notifier) *TranscriptService {
	return &TranscriptService{Repo: repo, Speech: speech, Hub: hub}
}

// Create transcribes the audio, segments it into captions and stores both.
// Providers that return no word timings fall back to spreading each
// phrase's words evenly over its span.
func (s *TranscriptService) Create(ctx context.Context, userID string, req model.TranscribeRequest) (*model.Transcript, error) {
	result, err := s.Speech.Transcribe(ctx, req.AudioURL, req.Language)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", req.AudioURL, err)
	}

	words := result.Words
	if len(words) == 0 {
		words = captions.FromSegments(result.Segments)
		if len(words) > 0 {
			logger.Sugar.Infof("No word timestamps for %s, spreading %d phrases", req.AudioURL, len(result.Segments))
		}
	}
	if words == nil {
		words = []captions.Word{}
	}
	segments := captions.Split(words, req.Options())
	if segments == nil {
		segments = []captions.Segment{}
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		parts := make([]string, len(segments))
		for i, seg := range segments {
			parts[i] = seg.Text
		}
		text = strings.Join(parts, " ")
	}
	duration := result.Duration
	if duration == 0 && len(words) > 0 {
		duration = words[len(words)-1].End
	}

	t := &model.Transcript{
		UserID:   userID,
		Title:    req.Title,
		AudioURL: req.AudioURL,
		Language: result.Language,
		Text:     text,
		Duration: duration,
		Words:    words,
		Segments: segments,
	}
	if t.Language == "" {
		t.Language = req.Language
	}
	// The transcription already happened; keep it even if the caller left.
	if err := s.Repo.Create(context.WithoutCancel(ctx), t); err != nil {
		return nil, err
	}

	s.Hub.Notify(userID, socket.TranscriptReadyType, model.Summary{
		ID: t.ID, Title: t.Title, Duration: t.Duration, Segments: len(t.Segments),
	})
	return t, nil
}

func (s *TranscriptService) List(ctx context.Context, userID string) ([]model.Transcript, error) {
	return s.Repo.List(ctx, userID)
}

func (s *TranscriptService) Get(ctx context.Context, id, userID string) (*model.Transcript, error) {
	return s.Repo.Get(ctx, id, userID)
}

// Captions renders the stored segments as an SRT or WebVTT file.
func (s *TranscriptService) Captions(ctx context.Context, id, userID, format string) (string, error) {
	if format == "" {
		format = model.FormatSRT
	}
	if format != model.FormatSRT && format != model.FormatVTT {
		return "", fmt.Errorf("%w: format must be srt or vtt", apperr.ErrInvalid)
	}
	t, err := s.Repo.Get(ctx, id, userID)
	if err != nil {
		return "", err
	}
	if format == model.FormatVTT {
		return captions.VTT(t.Segments), nil
	}
	return captions.SRT(t.Segments), nil
}

func (s *TranscriptService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transcript not found or not owned by you: %w", apperr.ErrNotFound)
	}
	return nil
}
