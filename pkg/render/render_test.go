package render

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seeksy/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/stage/render", r.URL.Path)
		assert.Equal(t, "shot-key", r.Header.Get("x-api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var edit Edit
		require.NoError(t, json.NewDecoder(r.Body).Decode(&edit))
		require.Len(t, edit.Timeline.Tracks, 1)
		assert.Equal(t, "https://cdn.seeksy.io/ep1.mp4", edit.Timeline.Tracks[0].Clips[0].Asset.Src)
		assert.Equal(t, "https://api.seeksy.io/api/clips/webhook?token=t", edit.Callback)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"message":"Created","response":{"id":"r-123","message":"Render Successfully Queued"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/stage", "shot-key", 5*time.Second)
	id, err := c.Submit(context.Background(), Edit{
		Timeline: Timeline{Tracks: []Track{{Clips: []Clip{{Asset: Asset{Type: "video", Src: "https://cdn.seeksy.io/ep1.mp4", Trim: 30}, Length: 15}}}}},
		Output:   Output{Format: "mp4", Resolution: "hd"},
		Callback: "https://api.seeksy.io/api/clips/webhook?token=t",
	})
	require.NoError(t, err)
	assert.Equal(t, "r-123", id)
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Bad timeline"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", 5*time.Second).Submit(context.Background(), Edit{})
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Contains(t, err.Error(), "Bad timeline")
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/render/r-123", r.URL.Path)
		w.Write([]byte(`{"success":true,"response":{"id":"r-123","status":"done","url":"https://cdn/out.mp4"}}`))
	}))
	defer srv.Close()

	st, err := NewClient(srv.URL, "k", 5*time.Second).Status(context.Background(), "r-123")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, st.Status)
	assert.Equal(t, "https://cdn/out.mp4", st.URL)
}
