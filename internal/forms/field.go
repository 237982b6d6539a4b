// Package forms defines the public self-service forms as typed field variants.
package forms

import (
	"encoding/json"
	"regexp"
)

// Kind is the JSON tag that identifies a field variant.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindPhone    Kind = "phone"
	KindDate     Kind = "date"
	KindNumber   Kind = "number"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
)

// Field is implemented only by the variants in this package.
type Field interface {
	Name() string
	Label() string
	Required() bool
	Kind() Kind
	field()
}

type base struct {
	name     string
	label    string
	required bool
}

func (b base) Name() string   { return b.name }
func (b base) Label() string  { return b.label }
func (b base) Required() bool { return b.required }
func (base) field()           {}

// Text is free text with optional length and pattern bounds.
type Text struct {
	base
	MinLen  int
	MaxLen  int
	Pattern *regexp.Regexp
	Hint    string
}

// Email is an email address.
type Email struct{ base }

// Phone is a phone number of 6 to 15 digits with an optional leading +.
type Phone struct{ base }

// Date is a calendar date in YYYY-MM-DD.
type Date struct {
	base
	NotInFuture bool
}

// Number is a decimal number with optional bounds.
type Number struct {
	base
	Min *float64
	Max *float64
}

// Option is one choice of a Select.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Select restricts the value to one of Options.
type Select struct {
	base
	Options []Option
}

// Checkbox is a boolean. MustAccept rejects false, for terms acceptance.
type Checkbox struct {
	base
	MustAccept bool
}

func (Text) Kind() Kind     { return KindText }
func (Email) Kind() Kind    { return KindEmail }
func (Phone) Kind() Kind    { return KindPhone }
func (Date) Kind() Kind     { return KindDate }
func (Number) Kind() Kind   { return KindNumber }
func (Select) Kind() Kind   { return KindSelect }
func (Checkbox) Kind() Kind { return KindCheckbox }

// NewText builds a text field.
func NewText(name, label string, required bool, minLen, maxLen int) Text {
	return Text{base: base{name, label, required}, MinLen: minLen, MaxLen: maxLen}
}

// WithPattern returns a copy of the field constrained by pattern.
func (t Text) WithPattern(pattern *regexp.Regexp, hint string) Text {
	t.Pattern = pattern
	t.Hint = hint
	return t
}

// NewEmail builds an email field.
func NewEmail(name, label string, required bool) Email {
	return Email{base{name, label, required}}
}

// NewPhone builds a phone field.
func NewPhone(name, label string, required bool) Phone {
	return Phone{base{name, label, required}}
}

// NewDate builds a date field.
func NewDate(name, label string, required, notInFuture bool) Date {
	return Date{base: base{name, label, required}, NotInFuture: notInFuture}
}

// NewNumber builds a number field.
func NewNumber(name, label string, required bool, lo, hi *float64) Number {
	return Number{base: base{name, label, required}, Min: lo, Max: hi}
}

// NewSelect builds a select field.
func NewSelect(name, label string, required bool, options []Option) Select {
	return Select{base: base{name, label, required}, Options: options}
}

// NewCheckbox builds a checkbox field.
func NewCheckbox(name, label string, mustAccept bool) Checkbox {
	return Checkbox{base: base{name, label, mustAccept}, MustAccept: mustAccept}
}

type fieldJSON struct {
	Kind       Kind     `json:"kind"`
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Required   bool     `json:"required"`
	MinLen     int      `json:"min_length,omitempty"`
	MaxLen     int      `json:"max_length,omitempty"`
	Pattern    string   `json:"pattern,omitempty"`
	Hint       string   `json:"hint,omitempty"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Options    []Option `json:"options,omitempty"`
	MustAccept bool     `json:"must_accept,omitempty"`
	NoFuture   bool     `json:"not_in_future,omitempty"`
}

func describe(f Field) fieldJSON {
	out := fieldJSON{Kind: f.Kind(), Name: f.Name(), Label: f.Label(), Required: f.Required()}
	switch v := f.(type) {
	case Text:
		out.MinLen, out.MaxLen, out.Hint = v.MinLen, v.MaxLen, v.Hint
		if v.Pattern != nil {
			out.Pattern = v.Pattern.String()
		}
	case Email, Phone:
	case Date:
		out.NoFuture = v.NotInFuture
	case Number:
		out.Min, out.Max = v.Min, v.Max
	case Select:
		out.Options = v.Options
	case Checkbox:
		out.MustAccept = v.MustAccept
	default:
		panic("forms: unhandled field kind " + string(f.Kind()))
	}
	return out
}

// Form is an ordered list of fields.
type Form struct {
	ID     string
	Title  string
	Fields []Field
}

// MarshalJSON renders the form with one kind-tagged object per field.
func (f Form) MarshalJSON() ([]byte, error) {
	fields := make([]fieldJSON, 0, len(f.Fields))
	for _, field := range f.Fields {
		fields = append(fields, describe(field))
	}
	return json.Marshal(struct {
		ID     string      `json:"id"`
		Title  string      `json:"title"`
		Fields []fieldJSON `json:"fields"`
	}{f.ID, f.Title, fields})
}
