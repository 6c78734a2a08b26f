package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const defaultModel = "gpt-4o-mini"

// Translator works with any OpenAI compatible chat completion endpoint.
type Translator struct {
	client openai.Client
	model  string
	logger *logrus.Entry
}

func NewTranslator(conf *config.TranslationConfig, log *logrus.Entry) (*Translator, error) {
	if conf.Credentials.APIKey == "" {
		return nil, fmt.Errorf("openai translator requires api_key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(conf.Credentials.APIKey),
		option.WithMaxRetries(2),
	}
	if ep := conf.GetOption("endpoint", ""); ep != "" {
		opts = append(opts, option.WithBaseURL(ep))
	}

	return &Translator{
		client: openai.NewClient(opts...),
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

	completion, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(t.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(insights.TranslationPrompt(sourceLang, targetLang)),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai translation failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	if translated := strings.TrimSpace(completion.Choices[0].Message.Content); translated != "" {
		result.TranslatedText = &translated
	}
	return result, nil
}
