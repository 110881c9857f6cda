package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const formDateLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid date")

	// now is swapped in tests.
	now = time.Now

	// Layouts accepted when decoding dates coming from the API.
	apiDateLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		formDateLayout,
	}

	weekdaysBR = [...]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}
	monthsBR   = [...]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}
)

// Date wraps time.Time with the wire format used by the API.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseAPIDate parses any of the timestamp layouts the API is known to send.
func ParseAPIDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range apiDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// UnmarshalJSON never fails on malformed input; such dates decode to zero
// and sort last.
func (d *Date) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*d = Date{}
		return nil
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseAPIDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(formDateLayout))), nil
}

// MarshalYAML keeps the form layout in YAML output.
func (d Date) MarshalYAML() (any, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(formDateLayout), nil
}

// Today returns the current form date.
func Today() string {
	return FormDate(now())
}

// FormDate normalizes t to the YYYY-MM-DD form submitted to the API.
// The calendar day is taken in UTC.
func FormDate(t time.Time) string {
	return t.UTC().Format(formDateLayout)
}

// ParseFormDate accepts YYYY-MM-DD or the pt-BR DD/MM/YYYY form and returns
// the normalized YYYY-MM-DD string.
func ParseFormDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse(formDateLayout, s); err == nil {
		return t.Format(formDateLayout), nil
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t.Format(formDateLayout), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDateBR renders d as DD/MM/YYYY; zero dates render as "-".
func FormatDateBR(d Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("02/01/2006")
}

// FormatDateLongBR renders d the way the details view does, for example
// "segunda-feira, 5 de maio de 2025 às 00:00".
func FormatDateLongBR(d Date) string {
	if d.IsZero() {
		return "-"
	}
	t := d.Time
	return fmt.Sprintf("%s, %d de %s de %d às %02d:%02d",
		weekdaysBR[t.Weekday()], t.Day(), monthsBR[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}
