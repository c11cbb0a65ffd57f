package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"seeksy/internal/clip/model"
	"seeksy/internal/clip/repository"
	transcriptmodel "seeksy/internal/transcript/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/captions"
	"seeksy/pkg/render"
	"seeksy/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	edits    []render.Edit
	statuses map[string]*render.Status
}

func (f *fakeRenderer) Submit(_ context.Context, edit render.Edit) (string, error) {
	f.edits = append(f.edits, edit)
	return "r-1", nil
}

func (f *fakeRenderer) Status(_ context.Context, id string) (*render.Status, error) {
	if st, ok := f.statuses[id]; ok {
		return st, nil
	}
	return nil, apperr.ErrUpstream
}

type fakeTranscripts map[string]*transcriptmodel.Transcript

func (f fakeTranscripts) Get(_ context.Context, id, userID string) (*transcriptmodel.Transcript, error) {
	t, ok := f[id]
	if !ok || t.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	return t, nil
}

type sent struct {
	UserID  string
	Type    string
	Payload any
}

type fakeNotifier struct {
	events []sent
}

func (f *fakeNotifier) Notify(userID, eventType string, payload any) {
	f.events = append(f.events, sent{userID, eventType, payload})
}

var clipCols = []string{"id", "user_id", "title", "source_url", "transcript_id", "start_time", "length", "aspect_ratio", "render_id", "status", "output_url", "error", "created_at", "updated_at"}

const transcriptID = "7d3c7f3e-2f4b-4c55-9f0a-1b2c3d4e5f60"

func setup(t *testing.T) (*ClipService, sqlmock.Sqlmock, *fakeRenderer, *fakeNotifier) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	r := &fakeRenderer{statuses: map[string]*render.Status{}}
	hub := &fakeNotifier{}
	transcripts := fakeTranscripts{transcriptID: {
		ID:     transcriptID,
		UserID: "u1",
		Segments: []captions.Segment{
			{Index: 1, Start: 0, End: 9, Text: "before the clip"},
			{Index: 2, Start: 9, End: 12, Text: "straddles the start"},
			{Index: 3, Start: 13, End: 15, Text: "inside"},
			{Index: 4, Start: 40, End: 42, Text: "after"},
		},
	}}
	svc := NewClipService(repository.NewClipRepository(db), r, transcripts, hub, "https://api.seeksy.io/api/clips/webhook", "s3cret")
	return svc, mock, r, hub
}

func clipRow(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(clipCols).
		AddRow("c1", "u1", "Best bit", "https://cdn.io/ep.mp4", nil, 10.0, 20.0, "9:16", "r-1", status, "", "", now, now)
}

func TestSubmitBuildsCaptionedTimeline(t *testing.T) {
	svc, mock, r, _ := setup(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO clips").
		WithArgs("u1", "Best bit", "https://cdn.io/ep.mp4", transcriptID, 10.0, 20.0, "9:16", "r-1", model.StatusQueued).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("c1", now, now))

	c, err := svc.Submit(context.Background(), "u1", model.ClipRequest{
		SourceURL: "https://cdn.io/ep.mp4", Title: "Best bit", Start: 10, Length: 20,
		AspectRatio: "9:16", TranscriptID: transcriptID,
	})
	require.NoError(t, err)
	assert.Equal(t, "r-1", c.RenderID)
	assert.Equal(t, model.StatusQueued, c.Status)

	require.Len(t, r.edits, 1)
	edit := r.edits[0]
	assert.Equal(t, "https://api.seeksy.io/api/clips/webhook?token=s3cret", edit.Callback)
	assert.Equal(t, "9:16", edit.Output.AspectRatio)
	require.Len(t, edit.Timeline.Tracks, 2)

	titles := edit.Timeline.Tracks[0].Clips
	require.Len(t, titles, 2)
	assert.Equal(t, "straddles the start", titles[0].Asset.Text)
	assert.Equal(t, 0.0, titles[0].Start)
	assert.Equal(t, 2.0, titles[0].Length)
	assert.Equal(t, 3.0, titles[1].Start)

	video := edit.Timeline.Tracks[1].Clips[0]
	assert.Equal(t, "video", video.Asset.Type)
	assert.Equal(t, 10.0, video.Asset.Trim)
	assert.Equal(t, 20.0, video.Length)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitWithoutTranscriptHasOneTrack(t *testing.T) {
	svc, mock, r, _ := setup(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO clips").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("c2", now, now))

	c, err := svc.Submit(context.Background(), "u1", model.ClipRequest{SourceURL: "https://cdn.io/ep.mp4", Length: 30})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAspectRatio, c.AspectRatio)
	assert.Len(t, r.edits[0].Timeline.Tracks, 1)
}

func TestSubmitRejectsBadWindow(t *testing.T) {
	svc, _, r, _ := setup(t)

	for _, req := range []model.ClipRequest{
		{SourceURL: "https://x.io/a.mp4", Start: -1, Length: 10},
		{SourceURL: "https://x.io/a.mp4", Start: 0, Length: 0},
		{SourceURL: "https://x.io/a.mp4", Start: 0, Length: 181},
	} {
		_, err := svc.Submit(context.Background(), "u1", req)
		assert.ErrorIs(t, err, apperr.ErrInvalid)
	}
	assert.Empty(t, r.edits)
}

func TestSubmitForeignTranscript(t *testing.T) {
	svc, _, r, _ := setup(t)

	_, err := svc.Submit(context.Background(), "intruder", model.ClipRequest{SourceURL: "https://x.io/a.mp4", Length: 5, TranscriptID: transcriptID})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, r.edits)
}

func TestHandleCallbackChecksToken(t *testing.T) {
	svc, _, _, _ := setup(t)

	err := svc.HandleCallback(context.Background(), "wrong", render.Callback{ID: "r-1", Status: render.StatusDone})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	svc.WebhookToken = ""
	err = svc.HandleCallback(context.Background(), "", render.Callback{ID: "r-1", Status: render.StatusDone})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestHandleCallbackUpdatesAndNotifies(t *testing.T) {
	svc, mock, _, hub := setup(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE clips")).
		WithArgs(model.StatusDone, "https://cdn.render.io/r-1.mp4", "", "r-1").
		WillReturnRows(sqlmock.NewRows(clipCols).
			AddRow("c1", "u1", "Best bit", "https://cdn.io/ep.mp4", nil, 10.0, 20.0, "9:16", "r-1", model.StatusDone, "https://cdn.render.io/r-1.mp4", "", now, now))

	err := svc.HandleCallback(context.Background(), "s3cret", render.Callback{ID: "r-1", Status: render.StatusDone, URL: "https://cdn.render.io/r-1.mp4"})
	require.NoError(t, err)
	require.Len(t, hub.events, 1)
	assert.Equal(t, "u1", hub.events[0].UserID)
	assert.Equal(t, socket.RenderStatusType, hub.events[0].Type)
	assert.Equal(t, model.StatusEvent{ID: "c1", Status: model.StatusDone, OutputURL: "https://cdn.render.io/r-1.mp4"}, hub.events[0].Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleCallbackForFinishedClipIsIgnored(t *testing.T) {
	svc, mock, _, hub := setup(t)

	mock.ExpectQuery("UPDATE clips").WillReturnRows(sqlmock.NewRows(clipCols))

	err := svc.HandleCallback(context.Background(), "s3cret", render.Callback{ID: "r-1", Status: render.StatusFailed})
	require.NoError(t, err)
	assert.Empty(t, hub.events)
}

func TestSyncPending(t *testing.T) {
	svc, mock, r, hub := setup(t)

	now := time.Now()
	cutoff := now.Add(-5 * time.Minute)
	mock.ExpectQuery("WHERE status IN").
		WithArgs(cutoff, syncBatch).
		WillReturnRows(sqlmock.NewRows(clipCols).
			AddRow("c1", "u1", "", "https://cdn.io/a.mp4", nil, 0.0, 10.0, "16:9", "r-1", model.StatusQueued, "", "", now, now).
			AddRow("c2", "u2", "", "https://cdn.io/b.mp4", nil, 0.0, 10.0, "16:9", "r-2", model.StatusQueued, "", "", now, now).
			AddRow("c3", "u3", "", "https://cdn.io/c.mp4", nil, 0.0, 10.0, "16:9", "r-3", model.StatusQueued, "", "", now, now))

	r.statuses["r-1"] = &render.Status{ID: "r-1", Status: render.StatusRendering}
	r.statuses["r-2"] = &render.Status{ID: "r-2", Status: render.StatusQueued}
	// r-3 fails to poll and is left alone.

	mock.ExpectQuery("UPDATE clips").
		WithArgs(model.StatusRendering, "", "", "r-1").
		WillReturnRows(sqlmock.NewRows(clipCols).
			AddRow("c1", "u1", "", "https://cdn.io/a.mp4", nil, 0.0, 10.0, "16:9", "r-1", model.StatusRendering, "", "", now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE clips SET updated_at = NOW() WHERE id = $1")).
		WithArgs("c2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := svc.SyncPending(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	require.Len(t, hub.events, 1)
	assert.Equal(t, "u1", hub.events[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSyncWorkerStopsOnCancel(t *testing.T) {
	svc, _, _, _ := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunSyncWorker(ctx, time.Hour, time.Minute)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sync worker did not stop")
	}
}

func TestGetScopesByUser(t *testing.T) {
	svc, mock, _, _ := setup(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM clips WHERE id = $1 AND user_id = $2")).
		WithArgs("c1", "u1").
		WillReturnRows(clipRow(model.StatusRendering))

	c, err := svc.Get(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.Nil(t, c.TranscriptID)
	assert.Equal(t, 10.0, c.Start)
}
