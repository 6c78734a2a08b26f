package insights

import (
	"context"
	"errors"
	"fmt"
)

const (
	// KindTranslated is the "type" of a translation result frame.
	KindTranslated = "translated"
)

// ErrEmptyText is returned by a Speaker asked to read nothing.
var ErrEmptyText = errors.New("nothing to synthesize")

// TranslationResult is the standardized result of a single translation.
// TranslatedText is nil when the backend answered but had nothing to return.
type TranslationResult struct {
	TranslatedText *string `json:"translated_text"`
	OriginalText   string  `json:"original_text"`
	SourceLanguage string  `json:"source_language"`
	TargetLanguage string  `json:"target_language"`
}

func (r *TranslationResult) Kind() string {
	return KindTranslated
}

// Translator is implemented by every translation backend.
// Implementations must be safe for concurrent use.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (*TranslationResult, error)
}

// Speaker reads a text out loud on the server side.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// TranslationPrompt is the system instruction given to LLM based translators.
func TranslationPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf("You are a live subtitle translator. Translate the user's text from %s to %s. "+
		"Reply with the translation only, without quotes, notes or explanations. "+
		"If the text is empty, reply with an empty message.", sourceLang, targetLang)
}

// Closer is optionally implemented by collaborators holding native resources.
type Closer interface {
	Close() error
}
