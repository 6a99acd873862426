package district

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rostergen/internal/generate"
	"rostergen/internal/roster"
)

// BirthYearWindow bounds student birth years so ages stay plausible for a
// school's grade band.
type BirthYearWindow struct {
	Min int
	Max int
}

// gradeAge is the typical age a student enters the grade.
func gradeAge(grade string) int {
	if grade == "PK" {
		return 4
	}
	// K, 1..12 are indices 1..13; K enters at 5.
	return roster.GradeIndex(grade) + 4
}

// ComputeBirthYearWindow derives the allowed birth-year range for a grade
// band against the given date. The youngest plausible student just entered
// the lowest grade; the oldest is a year past entry age for the highest.
func ComputeBirthYearWindow(now time.Time, lowGrade, highGrade string) BirthYearWindow {
	return BirthYearWindow{
		Min: now.Year() - gradeAge(highGrade) - 1,
		Max: now.Year() - gradeAge(lowGrade),
	}
}

// Contains reports whether the YYYY-MM-DD date string falls in the window.
func (w BirthYearWindow) Contains(dob string) bool {
	t, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return false
	}
	return t.Year() >= w.Min && t.Year() <= w.Max
}

// Roster is the validated output of one school's roster phase.
type Roster struct {
	Students    []roster.Student
	Sections    []roster.Section
	Enrollments []roster.Enrollment
}

type rosterPayload struct {
	Students    []roster.Student    `json:"students"`
	Sections    []roster.Section    `json:"sections"`
	Enrollments []roster.Enrollment `json:"enrollments"`
}

// BuildRoster requests the detailed roster for one already-generated
// school. Unlike a structural slice, exhaustion here is fatal only to this
// school: the caller logs it and moves on to siblings.
func (d *District) BuildRoster(ctx context.Context, school roster.School, allTeachers []roster.Teacher) (*Roster, error) {
	teachers := filterTeachers(allTeachers, school.SchoolID)
	if len(teachers) == 0 {
		return nil, fmt.Errorf("school %s has no teachers to assign", school.SchoolID)
	}

	p := rosterParams{
		School:       school,
		Teachers:     teachers,
		Sections:     d.cfg.Counts.SectionsPerSchool,
		Students:     d.cfg.Counts.StudentsPerSection,
		CoTeaching:   d.cfg.CoTeaching,
		Domain:       d.Domain,
		StudentBlock: d.alloc.Reserve(kindStudent, d.cfg.Counts.SectionsPerSchool*d.cfg.Counts.StudentsPerSection),
		SectionBlock: d.alloc.Reserve(kindSection, d.cfg.Counts.SectionsPerSchool),
		Window:       ComputeBirthYearWindow(time.Now(), school.LowGrade, school.HighGrade),
		AvoidFirst:   d.registry.FirstNames(),
		AvoidLast:    d.registry.LastNames(),
	}
	req := generate.Request{
		Label:  fmt.Sprintf("district %d school %s roster", d.Index, school.SchoolID),
		System: promptSystem,
		Prompt: rosterPrompt(p),
		Schema: rosterSchema(),
	}

	out := &Roster{}
	if err := d.runner.Do(ctx, req, func(raw []byte) error {
		return d.decodeRoster(raw, p, out)
	}); err != nil {
		return nil, fmt.Errorf("roster phase: %w", err)
	}

	d.log.Info("roster accepted",
		zap.Int("district", d.Index),
		zap.String("school", school.SchoolID),
		zap.Int("students", len(out.Students)),
		zap.Int("sections", len(out.Sections)),
		zap.Int("enrollments", len(out.Enrollments)))
	return out, nil
}

func filterTeachers(teachers []roster.Teacher, schoolID string) []roster.Teacher {
	var out []roster.Teacher
	for _, t := range teachers {
		if t.SchoolID == schoolID {
			out = append(out, t)
		}
	}
	return out
}

// decodeRoster parses and validates one roster payload: field rules,
// identifier blocks, teacher references back into the structural phase,
// birth-year bounds, co-teaching presence, and cross-enrollment.
func (d *District) decodeRoster(raw []byte, p rosterParams, out *Roster) error {
	var payload rosterPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if got := len(payload.Sections); got != p.Sections {
		return fmt.Errorf("expected %d sections, got %d", p.Sections, got)
	}
	if len(payload.Students) == 0 {
		return fmt.Errorf("payload contains no students")
	}
	if len(payload.Enrollments) == 0 {
		return fmt.Errorf("payload contains no enrollments")
	}

	schoolID := p.School.SchoolID
	teacherIDs := make(map[string]struct{}, len(p.Teachers))
	for _, t := range p.Teachers {
		teacherIDs[t.TeacherID] = struct{}{}
	}
	lowIdx, highIdx := roster.GradeIndex(p.School.LowGrade), roster.GradeIndex(p.School.HighGrade)

	stage := d.registry.Stage()
	sectionIDs := make(map[string]struct{}, len(payload.Sections))
	coTaught := false

	for _, s := range payload.Sections {
		if err := d.check.Section(s); err != nil {
			return err
		}
		if s.SchoolID != schoolID {
			return fmt.Errorf("section %s references school %q, want %q", s.SectionID, s.SchoolID, schoolID)
		}
		if !p.SectionBlock.Contains(s.SectionID) {
			return fmt.Errorf("section id %q outside assigned block", s.SectionID)
		}
		if _, ok := teacherIDs[s.TeacherID]; !ok {
			return fmt.Errorf("section %s taught by unknown teacher %q", s.SectionID, s.TeacherID)
		}
		if s.Teacher2ID != "" {
			if _, ok := teacherIDs[s.Teacher2ID]; !ok {
				return fmt.Errorf("section %s co-taught by unknown teacher %q", s.SectionID, s.Teacher2ID)
			}
			coTaught = true
		}
		if err := stage.ClaimID(s.SectionID); err != nil {
			return err
		}
		sectionIDs[s.SectionID] = struct{}{}
	}
	if p.CoTeaching && !coTaught {
		return fmt.Errorf("co-teaching enabled but no section has a second teacher")
	}

	studentIDs := make(map[string]struct{}, len(payload.Students))
	for _, s := range payload.Students {
		if err := d.check.Student(s); err != nil {
			return err
		}
		if s.SchoolID != schoolID {
			return fmt.Errorf("student %s references school %q, want %q", s.StudentID, s.SchoolID, schoolID)
		}
		if !p.StudentBlock.Contains(s.StudentID) {
			return fmt.Errorf("student id %q outside assigned block", s.StudentID)
		}
		if idx := roster.GradeIndex(s.Grade); idx < lowIdx || idx > highIdx {
			return fmt.Errorf("student %s grade %s outside school band %s-%s", s.StudentID, s.Grade, p.School.LowGrade, p.School.HighGrade)
		}
		if !p.Window.Contains(s.DOB) {
			return fmt.Errorf("student %s dob %q outside birth-year window %d-%d", s.StudentID, s.DOB, p.Window.Min, p.Window.Max)
		}
		if err := stage.ClaimID(s.StudentID); err != nil {
			return err
		}
		if err := stage.ClaimEmail(s.Email); err != nil {
			return err
		}
		if err := stage.ClaimName(s.FirstName, s.LastName); err != nil {
			return err
		}
		studentIDs[s.StudentID] = struct{}{}
	}

	seen := make(map[roster.Enrollment]struct{}, len(payload.Enrollments))
	bySection := make(map[string]map[string]struct{}, len(sectionIDs))
	perStudent := make(map[string]int, len(studentIDs))
	for _, e := range payload.Enrollments {
		if err := d.check.Enrollment(e); err != nil {
			return err
		}
		if e.SchoolID != schoolID {
			return fmt.Errorf("enrollment references school %q, want %q", e.SchoolID, schoolID)
		}
		if _, ok := sectionIDs[e.SectionID]; !ok {
			return fmt.Errorf("enrollment references unknown section %q", e.SectionID)
		}
		if _, ok := studentIDs[e.StudentID]; !ok {
			return fmt.Errorf("enrollment references unknown student %q", e.StudentID)
		}
		if _, dup := seen[e]; dup {
			return fmt.Errorf("duplicate enrollment %s/%s", e.SectionID, e.StudentID)
		}
		seen[e] = struct{}{}
		if bySection[e.SectionID] == nil {
			bySection[e.SectionID] = make(map[string]struct{})
		}
		bySection[e.SectionID][e.StudentID] = struct{}{}
		perStudent[e.StudentID]++
	}

	for id := range studentIDs {
		if perStudent[id] == 0 {
			return fmt.Errorf("student %s has no enrollments", id)
		}
	}
	for id := range sectionIDs {
		members := bySection[id]
		if len(members) == 0 {
			return fmt.Errorf("section %s has no enrollments", id)
		}
		cross := false
		for studentID := range members {
			if perStudent[studentID] > 1 {
				cross = true
				break
			}
		}
		if !cross {
			return fmt.Errorf("section %s has no cross-enrolled student", id)
		}
	}

	stage.Commit()
	out.Students = payload.Students
	out.Sections = payload.Sections
	out.Enrollments = payload.Enrollments
	return nil
}
