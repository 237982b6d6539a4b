package service

import (
	"database/sql"
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/academy-api/internal/forms"
	"github.com/noah-isme/academy-api/internal/repository"
	appErrors "github.com/noah-isme/academy-api/pkg/errors"
)

// repoError translates repository failures into the business taxonomy.
func repoError(err error, notFound, conflict, backend string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case errors.Is(err, repository.ErrUniqueViolation), errors.Is(err, repository.ErrForeignKeyViolation):
		if conflict == "" {
			conflict = appErrors.ErrConstraint.Message
		}
		return appErrors.Wrap(err, appErrors.ErrConstraint.Code, appErrors.ErrConstraint.Status, conflict)
	default:
		return appErrors.Backend(err, backend)
	}
}

// invalid converts validator and form errors into a ValidationError with field details.
func invalid(err error) error {
	var fieldErrs forms.FieldErrors
	if errors.As(err, &fieldErrs) {
		return appErrors.Validation(err, fieldErrs)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[toSnake(fe.Field())] = tagMessage(fe)
		}
		return appErrors.Validation(err, details)
	}
	return appErrors.Validation(err, nil)
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "correo no válido"
	case "numeric":
		return "debe contener solo números"
	case "len":
		return "debe tener " + fe.Param() + " caracteres"
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "uuid":
		return "identificador no válido"
	case "datetime":
		return "formato esperado " + fe.Param()
	default:
		return "no es válido"
	}
}

func invalidField(field, message string) error {
	return appErrors.Validation(errors.New(field+": "+message), map[string]string{field: message})
}

// toSnake turns a Go field name such as StudentID into its wire name student_id.
func toSnake(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
