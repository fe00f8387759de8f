// Package apierrors builds the JSON error envelope returned by the HTTP API.
package apierrors

import (
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"tasktracker/internal/models"
)

// JsonErr represents the JSON structure for apierrors.
type JsonErr struct {
	ErrDetails Err `json:"error"`
}

// Err represents the error with a code, message and optional field details.
type Err struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Fields  []models.FieldError `json:"fields,omitempty"`
}

func (e JsonErr) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.ErrDetails.Code, e.ErrDetails.Message)
}

// Translator resolves message ids for a language.
type Translator struct {
	bundle *i18n.Bundle
	logger *slog.Logger
}

func NewTranslator(bundle *i18n.Bundle, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{bundle: bundle, logger: logger}
}

// CreateError generates a JsonErr with a translated message.
func (t *Translator) CreateError(code int, msgKey, lang string, fields ...models.FieldError) JsonErr {
	return JsonErr{ErrDetails: Err{
		Code:    code,
		Message: t.Message(msgKey, lang),
		Fields:  fields,
	}}
}

// Message returns the translation of msgKey, falling back to English and then
// to the key itself.
func (t *Translator) Message(msgKey, lang string) string {
	if t == nil || t.bundle == nil {
		return msgKey
	}
	l := i18n.NewLocalizer(t.bundle, lang, "en")
	msg, err := l.Localize(&i18n.LocalizeConfig{MessageID: msgKey})
	if err != nil {
		t.logger.Warn("translation not found", slog.String("lang", lang), slog.String("message_id", msgKey), slog.Any("error", err))
		return msgKey
	}
	return msg
}
