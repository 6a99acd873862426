package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rostergen/internal/roster"
)

func sampleDataset() *roster.Dataset {
	return &roster.Dataset{
		Schools: []roster.School{{
			SchoolID: "D1-SCH-101001", SchoolName: "Cedar Elementary", SchoolNumber: "CE-1",
			LowGrade: "K", HighGrade: "6", Principal: "Ada Voss",
			PrincipalEmail: "ada.voss@district1.net", Address: "1 Main St",
			City: "Springfield", State: "IL", Zip: "62704", Phone: "217-555-0100",
		}},
		Teachers: []roster.Teacher{{
			SchoolID: "D1-SCH-101001", TeacherID: "D1-TCH-101001",
			Email: "mira.tanaka@district1.net", FirstName: "Mira", LastName: "Tanaka", Title: "Teacher",
		}},
		Staff: []roster.Staff{{
			SchoolID: "D1-SCH-101001", StaffID: "D1-STF-101001",
			Email: "district.administrator@district1.net", FirstName: "District",
			LastName: "Administrator", Department: "District Office", Title: "District Administrator",
		}},
		Students: []roster.Student{{
			SchoolID: "D1-SCH-101001", StudentID: "D1-STU-101001",
			Email: "liam.okafor@district1.net", FirstName: "Liam", LastName: "Okafor",
			Grade: "3", Gender: "M", DOB: "2017-05-15",
		}},
		Sections: []roster.Section{{
			SchoolID: "D1-SCH-101001", SectionID: "D1-SEC-101001", TeacherID: "D1-TCH-101001",
			Name: "Math A", SectionNumber: "MA", Grade: "3", Subject: "Math",
		}},
		Enrollments: []roster.Enrollment{{
			SchoolID: "D1-SCH-101001", SectionID: "D1-SEC-101001", StudentID: "D1-STU-101001",
		}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVExportWritesSixFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "district1")
	require.NoError(t, CSV{}.Export(dir, sampleDataset()))

	for _, name := range []string{"schools", "teachers", "staff", "students", "sections", "enrollments"} {
		rows := readCSV(t, filepath.Join(dir, name+".csv"))
		require.Len(t, rows, 2, "%s: header plus one row", name)
	}
}

func TestCSVColumnLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CSV{}.Export(dir, sampleDataset()))

	students := readCSV(t, filepath.Join(dir, "students.csv"))
	assert.Equal(t, []string{"school_id", "student_id", "student_number", "email_address",
		"state_id", "last_name", "middle_name", "first_name", "grade", "gender", "dob"},
		students[0])
	assert.Equal(t, []string{"D1-SCH-101001", "D1-STU-101001", "", "liam.okafor@district1.net",
		"", "Okafor", "", "Liam", "3", "M", "2017-05-15"}, students[1])

	sections := readCSV(t, filepath.Join(dir, "sections.csv"))
	assert.Equal(t, []string{"school_id", "section_id", "teacher_id", "teacher_2_id",
		"name", "section_number", "grade", "subject"}, sections[0])

	enrollments := readCSV(t, filepath.Join(dir, "enrollments.csv"))
	assert.Equal(t, []string{"school_id", "section_id", "student_id"}, enrollments[0])
	assert.Equal(t, []string{"D1-SCH-101001", "D1-SEC-101001", "D1-STU-101001"}, enrollments[1])
}

func TestCSVExportEmptyCollectionsStillWriteHeaders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CSV{}.Export(dir, &roster.Dataset{}))

	rows := readCSV(t, filepath.Join(dir, "teachers.csv"))
	require.Len(t, rows, 1)
	assert.Equal(t, "school_id", rows[0][0])
}
