package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Translator translates text with a Gemini model.
type Translator struct {
	client *genai.Client
	model  string
	logger *logrus.Entry
}

// NewTranslator creates a new Gemini backed translator.
func NewTranslator(ctx context.Context, conf *config.TranslationConfig, log *logrus.Entry) (*Translator, error) {
	if conf.Credentials.APIKey == "" {
		return nil, fmt.Errorf("google translator requires api_key")
	}

	cc := &genai.ClientConfig{
		APIKey:  conf.Credentials.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if endpoint := conf.GetOption("endpoint", ""); endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: endpoint}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Translator{
		client: client,
		model:  conf.GetOption("model", defaultModel),
		logger: log,
	}, nil
}

func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) (*insights.TranslationResult, error) {
	result := &insights.TranslationResult{
		OriginalText:   text,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	}
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	cnf := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				genai.NewPartFromText(insights.TranslationPrompt(sourceLang, targetLang)),
			},
		},
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(text), cnf)
	if err != nil {
		return nil, fmt.Errorf("gemini translation failed: %w", err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}

	if translated := strings.TrimSpace(sb.String()); translated != "" {
		result.TranslatedText = &translated
	}
	return result, nil
}
