package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestTranslator_Translate(t *testing.T) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"test-model",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" Hello \n"}}]}`))
	}))
	defer srv.Close()

	tr, err := NewTranslator(&config.TranslationConfig{
		Credentials: config.CredentialsConfig{APIKey: "test-key"},
		Options: map[string]interface{}{
			"endpoint": srv.URL + "/v1/",
			"model":    "test-model",
		},
	}, testLogger())
	require.NoError(t, err)

	res, err := tr.Translate(context.Background(), "こんにちは", "ja", "en")
	require.NoError(t, err)
	require.NotNil(t, res.TranslatedText)
	assert.Equal(t, "Hello", *res.TranslatedText)
	assert.Equal(t, "こんにちは", res.OriginalText)

	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "こんにちは", req.Messages[1].Content)
}

func TestTranslator_EmptyTextSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	tr, err := NewTranslator(&config.TranslationConfig{
		Credentials: config.CredentialsConfig{APIKey: "k"},
		Options:     map[string]interface{}{"endpoint": srv.URL + "/v1/"},
	}, testLogger())
	require.NoError(t, err)

	res, err := tr.Translate(context.Background(), " ", "ja", "en")
	require.NoError(t, err)
	assert.Nil(t, res.TranslatedText)
}

func TestNewTranslator_RequiresKey(t *testing.T) {
	_, err := NewTranslator(&config.TranslationConfig{}, testLogger())
	assert.Error(t, err)
}
