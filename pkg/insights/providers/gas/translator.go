package gas

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/sirupsen/logrus"
)

const maxBody = 1 << 20

// Translator calls a Google Apps Script web app that answers with the
// translated text as the plain response body.
type Translator struct {
	apiUrl string
	client *retryablehttp.Client
	logger *logrus.Entry
}

func NewTranslator(conf *config.TranslationConfig, log *logrus.Entry) (*Translator, error) {
	if conf.ApiUrl == "" {
		return nil, fmt.Errorf("gas translator requires api_url")
	}
	if _, err := url.Parse(conf.ApiUrl); err != nil {
		return nil, fmt.Errorf("invalid gas api_url: %w", err)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 15 * time.Second

	return &Translator{
		apiUrl: conf.ApiUrl,
		client: client,
		logger: log,
	}, nil
}

func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) (*insights.TranslationResult, error) {
	u, err := url.Parse(t.apiUrl)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("text", text)
	q.Set("source", strings.ToLower(sourceLang))
	q.Set("target", strings.ToLower(targetLang))
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	// redirects are followed by the default http client; Apps Script always answers with one
	res, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gas request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("gas http response code: %d, msg: %s", res.StatusCode, res.Status)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read gas response: %w", err)
	}

	result := &insights.TranslationResult{
		OriginalText:   text,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	}
	if len(body) > 0 {
		translated := string(body)
		result.TranslatedText = &translated
	}
	return result, nil
}
