package roster

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// personNamePattern accepts realistic name fields: letters, with interior
// apostrophes, hyphens, or spaces. Digits and other specials are rejected.
var personNamePattern = regexp.MustCompile(`^[A-Za-z]+(?:[ '-][A-Za-z]+)*$`)

// Validator checks generated entities against the schema rules before they
// may enter a dataset. A failure here is treated by callers exactly like a
// parse failure: the whole payload is rejected and the call retried.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a Validator with the custom grade and person-name
// rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for a nil/blank tag, which is static here.
	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return GradeIndex(fl.Field().String()) >= 0
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// School validates field-level rules plus the grade-band ordering.
func (c *Validator) School(s School) error {
	if err := c.v.Struct(s); err != nil {
		return fmt.Errorf("school %s: %w", s.SchoolID, err)
	}
	if GradeIndex(s.LowGrade) > GradeIndex(s.HighGrade) {
		return fmt.Errorf("school %s: low_grade %s above high_grade %s", s.SchoolID, s.LowGrade, s.HighGrade)
	}
	return nil
}

// Teacher validates field-level rules.
func (c *Validator) Teacher(t Teacher) error {
	if err := c.v.Struct(t); err != nil {
		return fmt.Errorf("teacher %s: %w", t.TeacherID, err)
	}
	return nil
}

// Staff validates field-level rules.
func (c *Validator) Staff(s Staff) error {
	if err := c.v.Struct(s); err != nil {
		return fmt.Errorf("staff %s: %w", s.StaffID, err)
	}
	return nil
}

// Student validates field-level rules.
func (c *Validator) Student(s Student) error {
	if err := c.v.Struct(s); err != nil {
		return fmt.Errorf("student %s: %w", s.StudentID, err)
	}
	return nil
}

// Section validates field-level rules plus the co-teacher self-reference.
func (c *Validator) Section(s Section) error {
	if err := c.v.Struct(s); err != nil {
		return fmt.Errorf("section %s: %w", s.SectionID, err)
	}
	if s.Teacher2ID != "" && s.Teacher2ID == s.TeacherID {
		return fmt.Errorf("section %s: teacher_2_id duplicates teacher_id %s", s.SectionID, s.TeacherID)
	}
	return nil
}

// Enrollment validates field-level rules. Referential checks against the
// section and student sets belong to the roster assembler, which has them
// in hand.
func (c *Validator) Enrollment(e Enrollment) error {
	if err := c.v.Struct(e); err != nil {
		return fmt.Errorf("enrollment %s/%s: %w", e.SectionID, e.StudentID, err)
	}
	return nil
}
