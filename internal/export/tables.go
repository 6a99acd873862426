// Package export flattens a district's final collections into tabular
// files: one directory per district with six tables, a header row followed
// by one row per entity.
package export

import "rostergen/internal/roster"

// table is one entity collection in tabular form.
type table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// tables renders the six collections in the fixed export order. Column
// names and order match the original CSV layout.
func tables(ds *roster.Dataset) []table {
	schools := table{
		Name: "schools",
		Header: []string{"school_id", "school_name", "school_number", "state_id", "low_grade",
			"high_grade", "principal", "principal_email", "school_address", "school_city",
			"school_state", "school_zip", "school_phone"},
	}
	for _, s := range ds.Schools {
		schools.Rows = append(schools.Rows, []string{s.SchoolID, s.SchoolName, s.SchoolNumber,
			s.StateID, s.LowGrade, s.HighGrade, s.Principal, s.PrincipalEmail, s.Address,
			s.City, s.State, s.Zip, s.Phone})
	}

	teachers := table{
		Name: "teachers",
		Header: []string{"school_id", "teacher_id", "teacher_number", "state_teacher_id",
			"teacher_email", "first_name", "middle_name", "last_name", "title"},
	}
	for _, t := range ds.Teachers {
		teachers.Rows = append(teachers.Rows, []string{t.SchoolID, t.TeacherID, t.TeacherNumber,
			t.StateTeacherID, t.Email, t.FirstName, t.MiddleName, t.LastName, t.Title})
	}

	staff := table{
		Name:   "staff",
		Header: []string{"school_id", "staff_id", "staff_email", "first_name", "last_name", "department", "title"},
	}
	for _, s := range ds.Staff {
		staff.Rows = append(staff.Rows, []string{s.SchoolID, s.StaffID, s.Email, s.FirstName,
			s.LastName, s.Department, s.Title})
	}

	students := table{
		Name: "students",
		Header: []string{"school_id", "student_id", "student_number", "email_address", "state_id",
			"last_name", "middle_name", "first_name", "grade", "gender", "dob"},
	}
	for _, s := range ds.Students {
		students.Rows = append(students.Rows, []string{s.SchoolID, s.StudentID, s.StudentNumber,
			s.Email, s.StateID, s.LastName, s.MiddleName, s.FirstName, s.Grade, s.Gender, s.DOB})
	}

	sections := table{
		Name: "sections",
		Header: []string{"school_id", "section_id", "teacher_id", "teacher_2_id", "name",
			"section_number", "grade", "subject"},
	}
	for _, s := range ds.Sections {
		sections.Rows = append(sections.Rows, []string{s.SchoolID, s.SectionID, s.TeacherID,
			s.Teacher2ID, s.Name, s.SectionNumber, s.Grade, s.Subject})
	}

	enrollments := table{
		Name:   "enrollments",
		Header: []string{"school_id", "section_id", "student_id"},
	}
	for _, e := range ds.Enrollments {
		enrollments.Rows = append(enrollments.Rows, []string{e.SchoolID, e.SectionID, e.StudentID})
	}

	return []table{schools, teachers, staff, students, sections, enrollments}
}
