package district

import (
	"fmt"
	"strings"

	"rostergen/internal/roster"
)

const promptSystem = "You fabricate realistic synthetic school district rostering data. " +
	"Follow every numeric count and identifier rule exactly. Output only JSON matching the requested schema."

// avoidList caps the names carried into a prompt so late requests in a big
// run do not balloon past token limits; uniqueness is still enforced on the
// way back in regardless.
func avoidList(names []string, capN int) string {
	if len(names) == 0 {
		return ""
	}
	if len(names) > capN {
		names = names[len(names)-capN:]
	}
	return strings.Join(names, ", ")
}

type structuralParams struct {
	Slice        int
	Schools      int
	Teachers     int // per school
	Staff        int // per school
	Domain       string
	SchoolBlock  Block
	TeacherBlock Block
	StaffBlock   Block
	AvoidFirst   []string
	AvoidLast    []string
}

// structuralPrompt builds the instruction text for one structural slice.
func structuralPrompt(p structuralParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create synthetic school district rostering data: exactly %d schools, %d teachers per school, and %d staff members per school.\n",
		p.Schools, p.Teachers, p.Staff)
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- %s\n", p.SchoolBlock.Describe("school_id"))
	fmt.Fprintf(&b, "- %s\n", p.TeacherBlock.Describe("teacher_id"))
	fmt.Fprintf(&b, "- %s\n", p.StaffBlock.Describe("staff_id"))
	fmt.Fprintf(&b, "- Every teacher and staff school_id must reference one of the %d schools in this response.\n", p.Schools)
	fmt.Fprintf(&b, "- All email addresses must be unique, realistic, and use the domain %q.\n", p.Domain)
	b.WriteString("- All school_number, teacher_number and state id values must be unique.\n")
	b.WriteString("- First names must be realistic, all different from each other, and contain no digits or special characters. Same for last names.\n")
	fmt.Fprintf(&b, "- low_grade and high_grade must be drawn from %s with low_grade at or below high_grade.\n", strings.Join(roster.Grades, ", "))
	if avoid := avoidList(p.AvoidFirst, 200); avoid != "" {
		fmt.Fprintf(&b, "- Do NOT use any of these first names (already taken): %s.\n", avoid)
	}
	if avoid := avoidList(p.AvoidLast, 200); avoid != "" {
		fmt.Fprintf(&b, "- Do NOT use any of these last names (already taken): %s.\n", avoid)
	}
	return b.String()
}

type rosterParams struct {
	School     roster.School
	Teachers   []roster.Teacher
	Sections   int
	Students   int // per section
	CoTeaching bool
	Domain     string

	StudentBlock Block
	SectionBlock Block
	Window       BirthYearWindow

	AvoidFirst []string
	AvoidLast  []string
}

// rosterPrompt builds the instruction text for one school's roster call.
// Identifiers from the structural phase are passed in as context so the
// generator can only wire sections to this school's teachers.
func rosterPrompt(p rosterParams) string {
	teacherIDs := make([]string, len(p.Teachers))
	for i, t := range p.Teachers {
		teacherIDs[i] = t.TeacherID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create the class roster for school %s (%q, grades %s-%s): exactly %d sections and %d students per section, plus one enrollment row per (section, student) pair.\n",
		p.School.SchoolID, p.School.SchoolName, p.School.LowGrade, p.School.HighGrade, p.Sections, p.Students)
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Every school_id must be exactly %q.\n", p.School.SchoolID)
	fmt.Fprintf(&b, "- Every section teacher_id must be one of: %s.\n", strings.Join(teacherIDs, ", "))
	if p.CoTeaching {
		b.WriteString("- At least one section must have a teacher_2_id (a different teacher from the same list); leave teacher_2_id empty elsewhere.\n")
	} else {
		b.WriteString("- Leave teacher_2_id empty on every section.\n")
	}
	fmt.Fprintf(&b, "- %s\n", p.SectionBlock.Describe("section_id"))
	fmt.Fprintf(&b, "- %s\n", p.StudentBlock.Describe("student_id"))
	b.WriteString("- Sections must cover different grade levels within the school's grade range, each with a subject and course name.\n")
	fmt.Fprintf(&b, "- Student grade values must lie between %s and %s.\n", p.School.LowGrade, p.School.HighGrade)
	fmt.Fprintf(&b, "- Every dob must be in YYYY-MM-DD format with the year between %d and %d so ages match the grade range.\n", p.Window.Min, p.Window.Max)
	b.WriteString("- In every section, at least one of its students must also be enrolled in another section of this school.\n")
	fmt.Fprintf(&b, "- All email addresses must be unique, realistic, and use the domain %q.\n", p.Domain)
	b.WriteString("- First names must be realistic, all different from each other, and contain no digits or special characters. Same for last names.\n")
	if avoid := avoidList(p.AvoidFirst, 200); avoid != "" {
		fmt.Fprintf(&b, "- Do NOT use any of these first names (already taken): %s.\n", avoid)
	}
	if avoid := avoidList(p.AvoidLast, 200); avoid != "" {
		fmt.Fprintf(&b, "- Do NOT use any of these last names (already taken): %s.\n", avoid)
	}
	return b.String()
}
