// Package roster defines the school-district entities produced by the
// generation service and the validation rules that gate them before they
// enter a run's dataset.
package roster

// Grade levels accepted anywhere a grade appears (school bands, students,
// sections). Ordered lowest to highest.
var Grades = []string{"PK", "K", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

// Genders accepted on student records.
var Genders = []string{"M", "F", "X"}

// School is one school building inside a district.
type School struct {
	SchoolID       string `json:"school_id" validate:"required"`
	SchoolName     string `json:"school_name" validate:"required"`
	SchoolNumber   string `json:"school_number" validate:"required"`
	StateID        string `json:"state_id" validate:"omitempty"`
	LowGrade       string `json:"low_grade" validate:"required,grade"`
	HighGrade      string `json:"high_grade" validate:"required,grade"`
	Principal      string `json:"principal" validate:"required"`
	PrincipalEmail string `json:"principal_email" validate:"required,email"`
	Address        string `json:"school_address" validate:"required"`
	City           string `json:"school_city" validate:"required"`
	State          string `json:"school_state" validate:"required"`
	Zip            string `json:"school_zip" validate:"required"`
	Phone          string `json:"school_phone" validate:"required"`
}

// Teacher teaches sections at exactly one school.
type Teacher struct {
	SchoolID       string `json:"school_id" validate:"required"`
	TeacherID      string `json:"teacher_id" validate:"required"`
	TeacherNumber  string `json:"teacher_number" validate:"omitempty"`
	StateTeacherID string `json:"state_teacher_id" validate:"omitempty"`
	Email          string `json:"teacher_email" validate:"required,email"`
	FirstName      string `json:"first_name" validate:"required,personname"`
	MiddleName     string `json:"middle_name" validate:"omitempty,personname"`
	LastName       string `json:"last_name" validate:"required,personname"`
	Title          string `json:"title" validate:"required"`
}

// Staff is non-teaching personnel. A run also contains a small number of
// locally synthesized staff rows (district administrator, dual-role clone
// of a teacher) that never came from the generator.
type Staff struct {
	SchoolID   string `json:"school_id" validate:"required"`
	StaffID    string `json:"staff_id" validate:"required"`
	Email      string `json:"staff_email" validate:"required,email"`
	FirstName  string `json:"first_name" validate:"required,personname"`
	LastName   string `json:"last_name" validate:"required,personname"`
	Department string `json:"department" validate:"required"`
	Title      string `json:"title" validate:"required"`
}

// Student is enrolled in one school and one or more sections.
type Student struct {
	SchoolID      string `json:"school_id" validate:"required"`
	StudentID     string `json:"student_id" validate:"required"`
	StudentNumber string `json:"student_number" validate:"omitempty"`
	Email         string `json:"email_address" validate:"required,email"`
	StateID       string `json:"state_id" validate:"omitempty"`
	LastName      string `json:"last_name" validate:"required,personname"`
	MiddleName    string `json:"middle_name" validate:"omitempty,personname"`
	FirstName     string `json:"first_name" validate:"required,personname"`
	Grade         string `json:"grade" validate:"required,grade"`
	Gender        string `json:"gender" validate:"required,oneof=M F X"`
	DOB           string `json:"dob" validate:"required,datetime=2006-01-02"`
}

// Section is one class taught by a teacher of the same school, optionally
// co-taught by a second teacher.
type Section struct {
	SchoolID      string `json:"school_id" validate:"required"`
	SectionID     string `json:"section_id" validate:"required"`
	TeacherID     string `json:"teacher_id" validate:"required"`
	Teacher2ID    string `json:"teacher_2_id" validate:"omitempty"`
	Name          string `json:"name" validate:"required"`
	SectionNumber string `json:"section_number" validate:"required"`
	Grade         string `json:"grade" validate:"required,grade"`
	Subject       string `json:"subject" validate:"required"`
}

// Enrollment joins a student to a section of the same school.
type Enrollment struct {
	SchoolID  string `json:"school_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

// Dataset holds one district's final collections, in generation order.
// Entities are appended as they pass validation and never mutated after.
type Dataset struct {
	Schools     []School
	Teachers    []Teacher
	Staff       []Staff
	Students    []Student
	Sections    []Section
	Enrollments []Enrollment
}

// GradeIndex returns the position of g in Grades, or -1.
func GradeIndex(g string) int {
	for i, grade := range Grades {
		if grade == g {
			return i
		}
	}
	return -1
}
