package autoreply

import (
	"fmt"
	"lexdesk/services/i18n"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders dates, times, counts and money for one locale and time
// zone. Every block of a reply goes through the same Formatter so the whole
// text reads consistently.
type Formatter struct {
	Lang     string
	Location *time.Location
	Currency string

	printer *message.Printer
}

func NewFormatter(lang string, loc *time.Location, currencyCode string) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Formatter{
		Lang:     lang,
		Location: loc,
		Currency: currencyCode,
		printer:  message.NewPrinter(tag),
	}
}

func (f *Formatter) parts(t time.Time) map[string]interface{} {
	t = t.In(f.Location)
	return map[string]interface{}{
		"weekday": i18n.Translate(f.Lang, fmt.Sprintf("format.weekday.%d", int(t.Weekday()))),
		"month":   i18n.Translate(f.Lang, fmt.Sprintf("format.month.%d", int(t.Month()))),
		"day":     t.Day(),
		"year":    t.Year(),
	}
}

// Date renders a long date with weekday, e.g. "Monday, March 3, 2025".
func (f *Formatter) Date(t time.Time) string {
	return i18n.Translate(f.Lang, "format.date_long", f.parts(t))
}

// ShortDate renders a date without weekday.
func (f *Formatter) ShortDate(t time.Time) string {
	return i18n.Translate(f.Lang, "format.date_short", f.parts(t))
}

func (f *Formatter) Time(t time.Time) string {
	return t.In(f.Location).Format(i18n.Translate(f.Lang, "format.time_layout"))
}

func (f *Formatter) DateTime(t time.Time) string {
	return i18n.Translate(f.Lang, "format.datetime", map[string]interface{}{
		"date": f.Date(t),
		"time": f.Time(t),
	})
}

// Number renders an integer with locale digit grouping.
func (f *Formatter) Number(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Money renders amount in the formatter's currency. Unknown currency codes
// are printed after a plain localized number.
func (f *Formatter) Money(amount float64) string {
	unit, err := currency.ParseISO(f.Currency)
	if err != nil {
		return f.printer.Sprintf("%.2f %s", amount, f.Currency)
	}
	return f.printer.Sprint(currency.Symbol(unit.Amount(amount)))
}
