package district

import (
	"google.golang.org/genai"

	"rostergen/internal/roster"
)

// Response schemas passed to the generator so the service itself enforces
// the field mapping. Client-side validation in the roster package remains
// the authority; the schema just raises the odds of a parseable response.

func strProp() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func enumProp(values []string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: values}
}

func objectOf(props map[string]*genai.Schema, required []string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func arrayOf(item *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: item}
}

func schoolSchema() *genai.Schema {
	return objectOf(map[string]*genai.Schema{
		"school_id":       strProp(),
		"school_name":     strProp(),
		"school_number":   strProp(),
		"state_id":        strProp(),
		"low_grade":       enumProp(roster.Grades),
		"high_grade":      enumProp(roster.Grades),
		"principal":       strProp(),
		"principal_email": strProp(),
		"school_address":  strProp(),
		"school_city":     strProp(),
		"school_state":    strProp(),
		"school_zip":      strProp(),
		"school_phone":    strProp(),
	}, []string{
		"school_id", "school_name", "school_number", "low_grade", "high_grade",
		"principal", "principal_email", "school_address", "school_city",
		"school_state", "school_zip", "school_phone",
	})
}

func teacherSchema() *genai.Schema {
	return objectOf(map[string]*genai.Schema{
		"school_id":        strProp(),
		"teacher_id":       strProp(),
		"teacher_number":   strProp(),
		"state_teacher_id": strProp(),
		"teacher_email":    strProp(),
		"first_name":       strProp(),
		"middle_name":      strProp(),
		"last_name":        strProp(),
		"title":            strProp(),
	}, []string{"school_id", "teacher_id", "teacher_email", "first_name", "last_name", "title"})
}

func staffSchema() *genai.Schema {
	return objectOf(map[string]*genai.Schema{
		"school_id":   strProp(),
		"staff_id":    strProp(),
		"staff_email": strProp(),
		"first_name":  strProp(),
		"last_name":   strProp(),
		"department":  strProp(),
		"title":       strProp(),
	}, []string{"school_id", "staff_id", "staff_email", "first_name", "last_name", "department", "title"})
}

func studentSchema() *genai.Schema {
	return objectOf(map[string]*genai.Schema{
		"school_id":      strProp(),
		"student_id":     strProp(),
		"student_number": strProp(),
		"email_address":  strProp(),
		"state_id":       strProp(),
		"last_name":      strProp(),
		"middle_name":    strProp(),
		"first_name":     strProp(),
		"grade":          enumProp(roster.Grades),
		"gender":         enumProp(roster.Genders),
		"dob":            strProp(),
	}, []string{"school_id", "student_id", "email_address", "last_name", "first_name", "grade", "gender", "dob"})
}

func sectionSchema() *genai.Schema {
	return objectOf(map[string]*genai.Schema{
		"school_id":      strProp(),
		"section_id":     strProp(),
		"teacher_id":     strProp(),
		"teacher_2_id":   strProp(),
		"name":           strProp(),
		"section_number": strProp(),
		"grade":          enumProp(roster.Grades),
		"subject":        strProp(),
	}, []string{"school_id", "section_id", "teacher_id", "name", "section_number", "grade", "subject"})
}

func enrollmentSchema() *genai.Schema {
	return objectOf(map[string]*genai.Schema{
		"school_id":  strProp(),
		"section_id": strProp(),
		"student_id": strProp(),
	}, []string{"school_id", "section_id", "student_id"})
}

// structuralSchema covers one slice of the structural phase.
func structuralSchema() *genai.Schema {
	return objectOf(map[string]*genai.Schema{
		"schools":  arrayOf(schoolSchema()),
		"teachers": arrayOf(teacherSchema()),
		"staff":    arrayOf(staffSchema()),
	}, []string{"schools", "teachers", "staff"})
}

// rosterSchema covers one school's roster phase.
func rosterSchema() *genai.Schema {
	return objectOf(map[string]*genai.Schema{
		"students":    arrayOf(studentSchema()),
		"sections":    arrayOf(sectionSchema()),
		"enrollments": arrayOf(enrollmentSchema()),
	}, []string{"students", "sections", "enrollments"})
}
