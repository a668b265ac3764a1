package money

import (
	"math"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

// MaxScale is the number of fractional digits an amount may carry.
const MaxScale = 2

// MaxAmount is the largest absolute amount a NUMERIC(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

var (
	ErrInvalidAmount  = serrors.NewError("MONEY_INVALID", "amount is not a number", "Errors.AmountInvalid")
	ErrTooPrecise     = serrors.NewError("MONEY_TOO_PRECISE", "amount has more than two fractional digits", "Errors.AmountTooPrecise")
	ErrNotPositive    = serrors.NewError("MONEY_NOT_POSITIVE", "amount must be greater than zero", "Errors.AmountNotPositive")
	ErrNegativeAmount = serrors.NewError("MONEY_NEGATIVE", "amount must not be negative", "Errors.AmountNegative")
	ErrTooLarge       = serrors.NewError("MONEY_TOO_LARGE", "amount exceeds the maximum", "Errors.AmountTooLarge")
)

// Parse reads a decimal amount typed by a user. Both "." and "," are accepted
// as the decimal separator and spaces are ignored.
func Parse(text string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '_':
			return -1
		case ',':
			return '.'
		}
		return r
	}, strings.TrimSpace(text))
	if cleaned == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount.Wrap(err)
	}
	if d.Exponent() < -MaxScale && !d.Equal(d.Truncate(MaxScale)) {
		return decimal.Zero, ErrTooPrecise
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, ErrTooLarge.WithTemplateData(map[string]string{"Max": MaxAmount.StringFixed(MaxScale)})
	}
	return d.Truncate(MaxScale), nil
}

// ParsePositive is Parse restricted to amounts greater than zero.
func ParsePositive(text string) (decimal.Decimal, error) {
	d, err := Parse(text)
	if err != nil {
		return d, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}
	return d, nil
}

// ParseNonNegative is Parse restricted to amounts of zero or more.
func ParseNonNegative(text string) (decimal.Decimal, error) {
	d, err := Parse(text)
	if err != nil {
		return d, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// Formatter renders amounts in one display currency.
type Formatter struct {
	currency string
}

func NewFormatter(currencyCode string) Formatter {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if gomoney.GetCurrency(code) == nil {
		code = gomoney.RUB
	}
	return Formatter{currency: code}
}

func (f Formatter) Currency() string {
	return f.currency
}

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Format renders d with the currency's grapheme and separators, e.g. "20 000,00 ₽".
// Amounts beyond int64 minor units are printed as plain decimals with the currency code.
func (f Formatter) Format(d decimal.Decimal) string {
	minor := d.Shift(MaxScale).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return d.StringFixed(MaxScale) + " " + f.currency
	}
	return gomoney.New(minor.IntPart(), f.currency).Display()
}
