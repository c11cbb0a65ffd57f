package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/url"

	"seeksy/internal/clip/model"
	"seeksy/internal/clip/repository"
	transcriptmodel "seeksy/internal/transcript/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/captions"
	"seeksy/pkg/logger"
	"seeksy/pkg/render"
	"seeksy/socket"
)

// Notifier pushes realtime events to a user's open sockets.
type Notifier interface {
	Notify(userID, eventType string, payload any)
}

// Renderer queues timelines with the cloud render service.
type Renderer interface {
	Submit(ctx context.Context, edit render.Edit) (string, error)
	Status(ctx context.Context, id string) (*render.Status, error)
}

// TranscriptSource loads a user's transcript for caption overlays.
type TranscriptSource interface {
	Get(ctx context.Context, id, userID string) (*transcriptmodel.Transcript, error)
}

type ClipService struct {
	Repo         *repository.ClipRepository
	Renderer     Renderer
	Transcripts  TranscriptSource
	Hub          Notifier
	CallbackURL  string
	WebhookToken string
}

func NewClipService(repo *repository.ClipRepository, renderer Renderer, transcripts TranscriptSource, hub Notifier, callbackURL, webhookToken string) *ClipService {
	return &ClipService{
		Repo:         repo,
		Renderer:     renderer,
		Transcripts:  transcripts,
		Hub:          hub,
		CallbackURL:  callbackURL,
		WebhookToken: webhookToken,
	}
}

// Submit builds the clip timeline, queues the render and records the clip.
func (s *ClipService) Submit(ctx context.Context, userID string, req model.ClipRequest) (*model.Clip, error) {
	if req.Start < 0 || req.Length <= 0 || req.Length > model.MaxLength {
		return nil, fmt.Errorf("%w: clip window must start at 0 or later and last between 0 and %.0f seconds", apperr.ErrInvalid, model.MaxLength)
	}

	c := &model.Clip{
		UserID:      userID,
		Title:       req.Title,
		SourceURL:   req.SourceURL,
		Start:       req.Start,
		Length:      req.Length,
		AspectRatio: req.AspectRatio,
		Status:      model.StatusQueued,
	}
	if c.AspectRatio == "" {
		c.AspectRatio = model.DefaultAspectRatio
	}

	var segs []captions.Segment
	if req.TranscriptID != "" {
		t, err := s.Transcripts.Get(ctx, req.TranscriptID, userID)
		if err != nil {
			return nil, err
		}
		segs = captions.Window(t.Segments, req.Start, req.Length)
		c.TranscriptID = &t.ID
	}

	renderID, err := s.Renderer.Submit(ctx, BuildEdit(c, segs, s.callback()))
	if err != nil {
		return nil, fmt.Errorf("submit render: %w", err)
	}
	c.RenderID = renderID

	// The render is already queued; record it even if the caller left.
	if err := s.Repo.Create(context.WithoutCancel(ctx), c); err != nil {
		return nil, err
	}
	logger.Sugar.Infof("Clip %s queued as render %s", c.ID, renderID)
	return c, nil
}

// BuildEdit lays out the render timeline: caption titles on top of one
// video track trimmed to the clip window.
func BuildEdit(c *model.Clip, segs []captions.Segment, callback string) render.Edit {
	video := render.Track{Clips: []render.Clip{{
		Asset:  render.Asset{Type: "video", Src: c.SourceURL, Trim: c.Start, Volume: 1},
		Start:  0,
		Length: c.Length,
	}}}

	var tracks []render.Track
	if len(segs) > 0 {
		titles := make([]render.Clip, 0, len(segs))
		for _, seg := range segs {
			titles = append(titles, render.Clip{
				Asset:    render.Asset{Type: "title", Text: seg.Text, Style: "subtitle", Size: "small"},
				Start:    seg.Start,
				Length:   seg.End - seg.Start,
				Position: "bottom",
			})
		}
		tracks = append(tracks, render.Track{Clips: titles})
	}
	tracks = append(tracks, video)

	return render.Edit{
		Timeline: render.Timeline{Background: "#000000", Tracks: tracks},
		Output:   render.Output{Format: "mp4", Resolution: "hd", AspectRatio: c.AspectRatio},
		Callback: callback,
	}
}

func (s *ClipService) callback() string {
	if s.CallbackURL == "" {
		return ""
	}
	u, err := url.Parse(s.CallbackURL)
	if err != nil {
		logger.Sugar.Warnf("Invalid render callback URL %q: %v", s.CallbackURL, err)
		return ""
	}
	q := u.Query()
	q.Set("token", s.WebhookToken)
	u.RawQuery = q.Encode()
	return u.String()
}

// HandleCallback applies a render webhook. Callbacks for unknown or
// already finished renders are acknowledged and ignored.
func (s *ClipService) HandleCallback(ctx context.Context, token string, cb render.Callback) error {
	if s.WebhookToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.WebhookToken)) != 1 {
		return fmt.Errorf("%w: bad webhook token", apperr.ErrForbidden)
	}
	if cb.ID == "" {
		return fmt.Errorf("%w: callback has no render id", apperr.ErrInvalid)
	}
	_, err := s.apply(ctx, cb.ID, &render.Status{ID: cb.ID, Status: cb.Status, URL: cb.URL, Error: cb.Error})
	return err
}

// apply stores a render status and tells the owner. It reports whether a
// clip changed.
func (s *ClipService) apply(ctx context.Context, renderID string, st *render.Status) (bool, error) {
	status := model.FromRender(st.Status)
	c, err := s.Repo.UpdateByRender(ctx, renderID, status, st.URL, st.Error)
	if err != nil {
		return false, err
	}
	if c == nil {
		logger.Sugar.Infof("Ignoring status %s for unknown or finished render %s", st.Status, renderID)
		return false, nil
	}
	s.Hub.Notify(c.UserID, socket.RenderStatusType, model.StatusEvent{
		ID: c.ID, Status: c.Status, OutputURL: c.OutputURL, Error: c.Error,
	})
	return true, nil
}

func (s *ClipService) List(ctx context.Context, userID string) ([]model.Clip, error) {
	return s.Repo.List(ctx, userID)
}

func (s *ClipService) Get(ctx context.Context, id, userID string) (*model.Clip, error) {
	return s.Repo.Get(ctx, id, userID)
}

func (s *ClipService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("clip not found or not owned by you: %w", apperr.ErrNotFound)
	}
	return nil
}
