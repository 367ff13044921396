package speech

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocal-api/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSynthesizeSendsRequestAndReturnsAudio(t *testing.T) {
	var gotAuth string
	var gotReq synthesisRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	c := New(config.SpeechConfig{
		Endpoint: srv.URL,
		APIKey:   "sk-test",
		Voice:    "alloy",
	}, testLogger())

	audio, err := c.Synthesize(context.Background(), "meeting in ten minutes")
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(audio))
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "meeting in ten minutes", gotReq.Input)
	assert.Equal(t, "alloy", gotReq.Voice)
}

func TestSynthesizeDisabledWithoutEndpoint(t *testing.T) {
	c := New(config.SpeechConfig{}, testLogger())
	assert.False(t, c.Enabled())

	_, err := c.Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSynthesizeSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(config.SpeechConfig{Endpoint: srv.URL}, testLogger())
	_, err := c.Synthesize(context.Background(), "hello")
	assert.ErrorContains(t, err, "429")
}

func TestSynthesizeRejectsEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	c := New(config.SpeechConfig{Endpoint: srv.URL}, testLogger())
	_, err := c.Synthesize(context.Background(), "hello")
	assert.ErrorContains(t, err, "no audio")
}
