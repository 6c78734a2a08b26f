package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mynaparrot/speech-relay/pkg/insights"
)

const TypeOriginal = "original"

var (
	ErrMalformedFrame   = errors.New("malformed recognition frame")
	ErrLanguageMismatch = errors.New("language code mismatch")
)

// RecognitionEvent is one inbound frame of the speech recognition page.
type RecognitionEvent struct {
	Text          string
	IsFinal       bool
	LanguageCode  string
	LanguageLabel string
}

type recognitionFrame struct {
	RecogText string          `json:"recogText"`
	IsFinal   bool            `json:"isFinal"`
	Language  json.RawMessage `json:"language"`
}

// DisplayMessage is forwarded to the overlay for every parsed event.
type DisplayMessage struct {
	RecogText    string `json:"recogText"`
	IsFinal      bool   `json:"isFinal"`
	LanguageCode string `json:"languageCode"`
	Type         string `json:"type"`
}

type translationMessage struct {
	*insights.TranslationResult
	Type string `json:"type"`
}

// ParseRecognitionEvent decodes a text frame. A missing or odd "language"
// value is tolerated and leaves the language fields empty.
func ParseRecognitionEvent(raw string) (*RecognitionEvent, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrMalformedFrame
	}

	var f recognitionFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	ev := &RecognitionEvent{
		Text:    f.RecogText,
		IsFinal: f.IsFinal,
	}

	if len(f.Language) > 0 {
		var lang map[string]any
		if err := json.Unmarshal(f.Language, &lang); err == nil {
			ev.LanguageCode, _ = lang["code"].(string)
			ev.LanguageLabel, _ = lang["label"].(string)
		}
	}
	return ev, nil
}

func (e *RecognitionEvent) DisplayMessage() *DisplayMessage {
	return &DisplayMessage{
		RecogText:    e.Text,
		IsFinal:      e.IsFinal,
		LanguageCode: e.LanguageCode,
		Type:         TypeOriginal,
	}
}

// ShortLanguageCode returns the first two characters of the language code.
func (e *RecognitionEvent) ShortLanguageCode() string {
	r := []rune(e.LanguageCode)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// CheckSourceLanguage reports ErrLanguageMismatch when the event was not
// spoken in source. The comparison is case-sensitive.
func (e *RecognitionEvent) CheckSourceLanguage(source string) error {
	if short := e.ShortLanguageCode(); short != source {
		return fmt.Errorf("%w: %s != %s", ErrLanguageMismatch, source, e.LanguageCode)
	}
	return nil
}

// encode marshals v without escaping non-ASCII or HTML characters.
func encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func encodeTranslation(r *insights.TranslationResult) (string, error) {
	return encode(&translationMessage{
		TranslationResult: r,
		Type:              r.Kind(),
	})
}
