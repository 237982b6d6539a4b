package forms

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

func studentForm() Form {
	return StudentRegistration([]Option{{Value: "c1", Label: "Marinera"}})
}

func TestStudentFormAcceptsValidSubmission(t *testing.T) {
	values, err := studentForm().Validate(map[string]interface{}{
		"dni":          "70123456",
		"full_name":    "  María Núñez ",
		"birth_date":   "2012-03-01",
		"phone":        "987 654 321",
		"email":        "Maria@Correo.PE",
		"course_id":    "c1",
		"accept_terms": true,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "María Núñez", values.String(FieldFullName))
	assert.Equal(t, "987654321", values.String(FieldPhone))
	assert.Equal(t, "maria@correo.pe", values.String(FieldEmail))
	require.NotNil(t, values.Date(FieldBirthDate))
	assert.Nil(t, values.OptionalString(FieldGuardianName))
	assert.True(t, values.Bool(FieldAcceptTerms))
}

func TestStudentFormReportsEveryFieldError(t *testing.T) {
	_, err := studentForm().Validate(map[string]interface{}{
		"dni":        "123",
		"phone":      "abc",
		"birth_date": "2030-01-01",
		"course_id":  "other",
	}, now)
	require.Error(t, err)
	fieldErrs, ok := err.(FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "debe tener al menos 8 caracteres", fieldErrs[FieldDNI])
	assert.Equal(t, "es obligatorio", fieldErrs[FieldFullName])
	assert.Equal(t, "teléfono inválido", fieldErrs[FieldPhone])
	assert.Equal(t, "no puede ser una fecha futura", fieldErrs[FieldBirthDate])
	assert.Equal(t, "opción inválida", fieldErrs[FieldCourseID])
	assert.Equal(t, "debe aceptarse", fieldErrs[FieldAcceptTerms])
}

func TestDNIPatternHint(t *testing.T) {
	_, err := VolunteerRegistration().Validate(map[string]interface{}{
		"dni": "1234567a", "full_name": "Luis", "phone": "999888777", "area": "eventos", "accept_terms": true,
	}, now)
	require.Error(t, err)
	assert.Equal(t, "el DNI debe tener 8 dígitos", err.(FieldErrors)[FieldDNI])
}

func TestNumberBounds(t *testing.T) {
	lo, hi := 1.0, 10.0
	form := Form{Fields: []Field{NewNumber("clases", "Clases", true, &lo, &hi)}}

	values, err := form.Validate(map[string]interface{}{"clases": "4"}, now)
	require.NoError(t, err)
	n, ok := values.Number("clases")
	assert.True(t, ok)
	assert.Equal(t, 4.0, n)

	_, err = form.Validate(map[string]interface{}{"clases": 11.0}, now)
	assert.Error(t, err)
}

func TestFormJSONCarriesKindTags(t *testing.T) {
	raw, err := json.Marshal(VolunteerRegistration())
	require.NoError(t, err)

	var decoded struct {
		ID     string `json:"id"`
		Fields []struct {
			Kind    Kind     `json:"kind"`
			Name    string   `json:"name"`
			Pattern string   `json:"pattern"`
			Options []Option `json:"options"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, VolunteerFormID, decoded.ID)
	require.Len(t, decoded.Fields, 6)
	assert.Equal(t, KindText, decoded.Fields[0].Kind)
	assert.Equal(t, "^[0-9]{8}$", decoded.Fields[0].Pattern)
	assert.Equal(t, KindSelect, decoded.Fields[4].Kind)
	assert.Len(t, decoded.Fields[4].Options, len(VolunteerAreas))
	assert.Equal(t, KindCheckbox, decoded.Fields[5].Kind)
}
