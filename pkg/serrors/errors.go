package serrors

import (
	"errors"
	"fmt"

	"github.com/iota-uz/go-i18n/v2/i18n"
)

// BaseError is a coded error that carries a locale key for user-facing rendering.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
	cause        error
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.cause)
}

func (e *BaseError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a BaseError with the same code, so package-level
// sentinels keep matching after WithTemplateData / Wrap copies.
func (e *BaseError) Is(target error) bool {
	var other *BaseError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// WithTemplateData returns a copy carrying data for the locale template.
func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	cp := *e
	cp.TemplateData = data
	return &cp
}

// Wrap returns a copy of e with cause attached.
func (e *BaseError) Wrap(cause error) *BaseError {
	cp := *e
	cp.cause = cause
	return &cp
}

// Localize renders the error for end users. Falls back to Message when the
// localizer is missing or has no translation for LocaleKey.
func (e *BaseError) Localize(l *i18n.Localizer) string {
	if l == nil || e.LocaleKey == "" {
		return e.Message
	}
	data := make(map[string]interface{}, len(e.TemplateData))
	for k, v := range e.TemplateData {
		data[k] = v
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    e.LocaleKey,
		TemplateData: data,
	})
	if err != nil {
		return e.Message
	}
	return msg
}

// Code extracts the code of the first BaseError in err's chain.
func Code(err error) string {
	var be *BaseError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

