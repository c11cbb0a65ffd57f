package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAndSign(t *testing.T) {
	upload := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "true", r.Header.Get("x-upsert"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, "audio-bytes", string(data))
		w.Write([]byte(`{"Key":"recordings/user-1/abc-my show.mp3"}`))
	}
	sign := func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 3600, body["expiresIn"])
		w.Write([]byte(`{"signedURL":"/object/sign/recordings/user-1/abc-my%20show.mp3?token=xyz"}`))
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/storage/v1/object/recordings/user-1/abc-my%20show.mp3":
			upload(w, r)
		case "/storage/v1/object/sign/recordings/user-1/abc-my%20show.mp3":
			sign(w, r)
		default:
			t.Errorf("unexpected path %s", r.URL.EscapedPath())
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/storage/v1", "service-key", 5*time.Second)
	require.NoError(t, c.Upload(context.Background(), "recordings", "user-1/abc-my show.mp3", "audio/mpeg", []byte("audio-bytes")))

	u, err := c.SignedURL(context.Background(), "recordings", "user-1/abc-my show.mp3", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/sign/recordings/user-1/abc-my%20show.mp3?token=xyz", u)
}
