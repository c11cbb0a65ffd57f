// Package speech calls an OpenAI-compatible transcription endpoint and
// returns word-level timestamps.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"time"

	"seeksy/pkg/apperr"
	"seeksy/pkg/captions"
	"seeksy/pkg/upstream"
)

// MaxAudioBytes is the provider's upload ceiling.
const MaxAudioBytes = 25 << 20

// Result is the verbose_json transcription payload.
type Result struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language"`
	Duration float64                `json:"duration"`
	Words    []captions.Word        `json:"words"`
	Segments []captions.TextSegment `json:"segments"`
}

type Client struct {
	api      *upstream.Client
	model    string
	download *http.Client
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		// Uploads are large and not worth replaying automatically.
		api:      upstream.New("speech-to-text", baseURL, apiKey, timeout, 1),
		model:    model,
		download: &http.Client{Timeout: timeout},
	}
}

// Transcribe fetches audioURL and sends it for transcription. language is
// an optional ISO-639-1 hint.
func (c *Client) Transcribe(ctx context.Context, audioURL, language string) (*Result, error) {
	audio, err := c.fetch(ctx, audioURL)
	if err != nil {
		return nil, err
	}
	return c.TranscribeBytes(ctx, audioFilename(audioURL), audio, language)
}

// audioFilename names the upload after the URL path, dropping any query
// string so signed URLs keep their extension. Providers detect the format
// from it.
func audioFilename(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err != nil {
		return "audio"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "audio"
	}
	return name
}

// TranscribeBytes sends already-loaded audio.
func (c *Client) TranscribeBytes(ctx context.Context, filename string, audio []byte, language string) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, fmt.Errorf("write audio: %w", err)
	}
	fields := [][2]string{
		{"model", c.model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "word"},
		{"timestamp_granularities[]", "segment"},
	}
	if language != "" {
		fields = append(fields, [2]string{"language", language})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var res Result
	if err := c.api.Do(ctx, http.MethodPost, "/audio/transcriptions", mw.FormDataContentType(), buf.Bytes(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) fetch(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bad audio URL: %v", apperr.ErrInvalid, err)
	}
	resp, err := c.download.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download audio: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download audio: status %d", apperr.ErrUpstream, resp.StatusCode)
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, MaxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", apperr.ErrUpstream, err)
	}
	if len(audio) > MaxAudioBytes {
		return nil, fmt.Errorf("%w: audio exceeds %d MB", apperr.ErrInvalid, MaxAudioBytes>>20)
	}
	return audio, nil
}
