package forms

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var (
	validate     = validator.New()
	phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
)

// FieldErrors maps field names to user-facing messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e[name])
	}
	return strings.Join(parts, "; ")
}

// Values holds a validated submission, normalised per field kind.
type Values struct {
	strings map[string]string
	numbers map[string]float64
	dates   map[string]time.Time
	bools   map[string]bool
}

// String returns a text, email, phone or select value.
func (v Values) String(name string) string { return v.strings[name] }

// OptionalString returns nil when the field was left empty.
func (v Values) OptionalString(name string) *string {
	s, ok := v.strings[name]
	if !ok || s == "" {
		return nil
	}
	return &s
}

// Date returns a date value, nil when absent.
func (v Values) Date(name string) *time.Time {
	d, ok := v.dates[name]
	if !ok {
		return nil
	}
	return &d
}

// Number returns a number value and whether it was present.
func (v Values) Number(name string) (float64, bool) {
	n, ok := v.numbers[name]
	return n, ok
}

// Bool returns a checkbox value.
func (v Values) Bool(name string) bool { return v.bools[name] }

// Validate checks a decoded JSON submission against the form.
func (f Form) Validate(submission map[string]interface{}, now time.Time) (Values, error) {
	values := Values{
		strings: map[string]string{},
		numbers: map[string]float64{},
		dates:   map[string]time.Time{},
		bools:   map[string]bool{},
	}
	errs := FieldErrors{}
	for _, field := range f.Fields {
		raw, present := submission[field.Name()]
		if present && isBlank(raw) {
			present = false
		}
		if !present {
			if _, ok := field.(Checkbox); ok {
				raw, present = false, true
			} else {
				if field.Required() {
					errs[field.Name()] = "es obligatorio"
				}
				continue
			}
		}
		if msg := checkField(field, raw, now, &values); msg != "" {
			errs[field.Name()] = msg
		}
	}
	if len(errs) > 0 {
		return Values{}, errs
	}
	return values, nil
}

func checkField(field Field, raw interface{}, now time.Time, out *Values) string {
	switch f := field.(type) {
	case Text:
		s, ok := raw.(string)
		if !ok {
			return "debe ser texto"
		}
		s = strings.TrimSpace(s)
		length := len([]rune(s))
		if f.MinLen > 0 && length < f.MinLen {
			return fmt.Sprintf("debe tener al menos %d caracteres", f.MinLen)
		}
		if f.MaxLen > 0 && length > f.MaxLen {
			return fmt.Sprintf("debe tener como máximo %d caracteres", f.MaxLen)
		}
		if f.Pattern != nil && !f.Pattern.MatchString(s) {
			if f.Hint != "" {
				return f.Hint
			}
			return "formato inválido"
		}
		out.strings[f.Name()] = s
	case Email:
		s, ok := raw.(string)
		if !ok {
			return "debe ser texto"
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if err := validate.Var(s, "email"); err != nil {
			return "correo inválido"
		}
		out.strings[f.Name()] = s
	case Phone:
		s, ok := raw.(string)
		if !ok {
			return "debe ser texto"
		}
		s = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
		if !phonePattern.MatchString(s) {
			return "teléfono inválido"
		}
		out.strings[f.Name()] = s
	case Date:
		s, ok := raw.(string)
		if !ok {
			return "debe ser una fecha"
		}
		d, err := time.Parse(dateLayout, strings.TrimSpace(s))
		if err != nil {
			return "use el formato AAAA-MM-DD"
		}
		if f.NotInFuture && d.After(now) {
			return "no puede ser una fecha futura"
		}
		out.dates[f.Name()] = d
	case Number:
		n, err := toNumber(raw)
		if err != nil {
			return "debe ser un número"
		}
		if f.Min != nil && n < *f.Min {
			return fmt.Sprintf("debe ser mayor o igual a %v", *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return fmt.Sprintf("debe ser menor o igual a %v", *f.Max)
		}
		out.numbers[f.Name()] = n
	case Select:
		s, ok := raw.(string)
		if !ok {
			return "opción inválida"
		}
		for _, opt := range f.Options {
			if opt.Value == s {
				out.strings[f.Name()] = s
				return ""
			}
		}
		return "opción inválida"
	case Checkbox:
		b, ok := raw.(bool)
		if !ok {
			return "debe ser verdadero o falso"
		}
		if f.MustAccept && !b {
			return "debe aceptarse"
		}
		out.bools[f.Name()] = b
	default:
		panic("forms: unhandled field kind " + string(field.Kind()))
	}
	return ""
}

func isBlank(raw interface{}) bool {
	if raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toNumber(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("not a number: %T", raw)
	}
}
