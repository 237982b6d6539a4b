package forms

import "regexp"

// Form identifiers served by the public endpoints.
const (
	StudentFormID   = "student"
	VolunteerFormID = "volunteer"
)

// Field names shared by the definitions and the services that read submissions.
const (
	FieldDNI          = "dni"
	FieldFullName     = "full_name"
	FieldPhone        = "phone"
	FieldEmail        = "email"
	FieldBirthDate    = "birth_date"
	FieldGuardianName = "guardian_name"
	FieldCourseID     = "course_id"
	FieldArea         = "area"
	FieldAcceptTerms  = "accept_terms"
)

var dniPattern = regexp.MustCompile(`^[0-9]{8}$`)

// VolunteerAreas are the areas offered on the volunteer form.
var VolunteerAreas = []Option{
	{Value: "enseñanza", Label: "Enseñanza"},
	{Value: "logística", Label: "Logística"},
	{Value: "eventos", Label: "Eventos"},
	{Value: "comunicaciones", Label: "Comunicaciones"},
}

// StudentRegistration is the self-enrollment form. courses lists the academy's active courses.
func StudentRegistration(courses []Option) Form {
	return Form{
		ID:    StudentFormID,
		Title: "Inscripción de alumnos",
		Fields: []Field{
			NewText(FieldDNI, "DNI", true, 8, 8).WithPattern(dniPattern, "el DNI debe tener 8 dígitos"),
			NewText(FieldFullName, "Nombres y apellidos", true, 3, 120),
			NewDate(FieldBirthDate, "Fecha de nacimiento", false, true),
			NewText(FieldGuardianName, "Apoderado", false, 0, 120),
			NewPhone(FieldPhone, "Teléfono", true),
			NewEmail(FieldEmail, "Correo", false),
			NewSelect(FieldCourseID, "Curso", true, courses),
			NewCheckbox(FieldAcceptTerms, "Acepto los términos", true),
		},
	}
}

// VolunteerRegistration is the volunteer self-enrollment form.
func VolunteerRegistration() Form {
	return Form{
		ID:    VolunteerFormID,
		Title: "Registro de voluntarios",
		Fields: []Field{
			NewText(FieldDNI, "DNI", true, 8, 8).WithPattern(dniPattern, "el DNI debe tener 8 dígitos"),
			NewText(FieldFullName, "Nombres y apellidos", true, 3, 120),
			NewPhone(FieldPhone, "Teléfono", true),
			NewEmail(FieldEmail, "Correo", false),
			NewSelect(FieldArea, "Área", true, VolunteerAreas),
			NewCheckbox(FieldAcceptTerms, "Acepto los términos", true),
		},
	}
}
