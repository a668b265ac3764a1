package presentation

import (
	"errors"
	"sort"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/pkg/money"
	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

// Texts renders localized messages for one language and currency.
type Texts struct {
	localizer *i18n.Localizer
	money     money.Formatter
}

func NewTexts(bundle *i18n.Bundle, lang string, formatter money.Formatter) *Texts {
	return &Texts{
		localizer: i18n.NewLocalizer(bundle, lang),
		money:     formatter,
	}
}

// T localizes id. Missing messages render as the id itself.
func (t *Texts) T(id string) string {
	return t.TD(id, nil)
}

func (t *Texts) TD(id string, data map[string]any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}

func (t *Texts) Money(d decimal.Decimal) string {
	return t.money.Format(d)
}

// Amount renders id with {{.Amount}} set to the formatted d.
func (t *Texts) Amount(id string, d decimal.Decimal) string {
	return t.TD(id, map[string]any{"Amount": t.Money(d)})
}

// Error renders a coded error for the user; anything else becomes the generic failure text.
func (t *Texts) Error(err error) string {
	var verrs serrors.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for field := range verrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return t.validation(verrs[fields[0]])
	}
	var be *serrors.BaseError
	if errors.As(err, &be) {
		return be.Localize(t.localizer)
	}
	return t.T("Errors.Generic")
}

func (t *Texts) validation(be *serrors.BaseError) string {
	data := make(map[string]any, len(be.TemplateData))
	for k, v := range be.TemplateData {
		data[k] = v
	}
	if key, ok := be.TemplateData["Field"]; ok && key != "" {
		data["Field"] = t.T(key)
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: be.LocaleKey, TemplateData: data})
	if err != nil {
		return be.Message
	}
	return msg
}
