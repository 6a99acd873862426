package district

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rostergen/internal/config"
	"rostergen/internal/generate"
	"rostergen/internal/progress"
	"rostergen/internal/roster"
)

// testConfig returns a small, fast configuration for orchestration tests.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Counts = config.CountsConfig{
		Districts:          1,
		SchoolsPerDistrict: 3,
		TeachersPerSchool:  5,
		StaffPerSchool:     1,
		SectionsPerSchool:  2,
		StudentsPerSection: 2,
	}
	cfg.Generator.MaxSchoolsPerCall = 2
	cfg.Generator.MaxAttempts = 2
	return cfg
}

// fakeGen pops queued responses in order.
type fakeGen struct {
	t     *testing.T
	queue []func(req generate.Request) ([]byte, error)
	calls []generate.Request
}

func (g *fakeGen) Generate(ctx context.Context, req generate.Request) ([]byte, error) {
	g.calls = append(g.calls, req)
	require.LessOrEqual(g.t, len(g.calls), len(g.queue), "unexpected generation call %q", req.Label)
	return g.queue[len(g.calls)-1](req)
}

func respond(payload any) func(generate.Request) ([]byte, error) {
	return func(generate.Request) ([]byte, error) {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		return raw, nil
	}
}

func respondErr(err error) func(generate.Request) ([]byte, error) {
	return func(generate.Request) ([]byte, error) { return nil, err }
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func testRunner(t *testing.T, gen generate.Generator, attempts int) *generate.Runner {
	t.Helper()
	r := generate.NewRunner(gen, attempts, progress.Nop{})
	r.Sleep = noSleep
	return r
}

// nameSeq produces globally unique digit-free name pairs.
type nameSeq struct{ n int }

func alphaSuffix(i int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	s := string(letters[i%26])
	for i /= 26; i > 0; i /= 26 {
		s = string(letters[i%26]) + s
	}
	return s
}

func (s *nameSeq) next() (string, string) {
	i := s.n
	s.n++
	return "Fn" + alphaSuffix(i), "Ln" + alphaSuffix(i)
}

func emailFor(first, last, domain string) string {
	return strings.ToLower(first) + "." + strings.ToLower(last) + "@" + domain
}

// structuralBlocks mirrors the reservation order of BuildStructure for one
// slice: schools, then teachers, then staff.
type structuralBlocks struct {
	School, Teacher, Staff Block
}

func reserveStructural(alloc *Allocator, schools, tps, sps int) structuralBlocks {
	return structuralBlocks{
		School:  alloc.Reserve(kindSchool, schools),
		Teacher: alloc.Reserve(kindTeacher, schools*tps),
		Staff:   alloc.Reserve(kindStaff, schools*sps),
	}
}

// makeStructural builds a fully valid slice payload for the given blocks.
func makeStructural(b structuralBlocks, schools, tps, sps int, domain string, names *nameSeq) structuralPayload {
	var p structuralPayload
	for i := 0; i < schools; i++ {
		id := b.School.ID(i)
		p.Schools = append(p.Schools, roster.School{
			SchoolID:       id,
			SchoolName:     "School " + alphaSuffix(names.n),
			SchoolNumber:   fmt.Sprintf("%s-%d", domain, names.n),
			LowGrade:       "K",
			HighGrade:      "6",
			Principal:      "Principal " + alphaSuffix(names.n),
			PrincipalEmail: fmt.Sprintf("principal.%s@%s", strings.ToLower(alphaSuffix(names.n)), domain),
			Address:        "1 Main St",
			City:           "Springfield",
			State:          "IL",
			Zip:            "62704",
			Phone:          "217-555-0100",
		})
		names.n++
	}
	for i := 0; i < schools*tps; i++ {
		first, last := names.next()
		p.Teachers = append(p.Teachers, roster.Teacher{
			SchoolID:  p.Schools[i/tps].SchoolID,
			TeacherID: b.Teacher.ID(i),
			Email:     emailFor(first, last, domain),
			FirstName: first,
			LastName:  last,
			Title:     "Teacher",
		})
	}
	for i := 0; i < schools*sps; i++ {
		first, last := names.next()
		p.Staff = append(p.Staff, roster.Staff{
			SchoolID:   p.Schools[i/sps].SchoolID,
			StaffID:    b.Staff.ID(i),
			Email:      emailFor(first, last, domain),
			FirstName:  first,
			LastName:   last,
			Department: "Office",
			Title:      "Clerk",
		})
	}
	return p
}

// rosterBlocks mirrors the reservation order of BuildRoster for one school.
type rosterBlocks struct {
	Student, Section Block
}

func reserveRoster(alloc *Allocator, sections, perSection int) rosterBlocks {
	return rosterBlocks{
		Student: alloc.Reserve(kindStudent, sections*perSection),
		Section: alloc.Reserve(kindSection, sections),
	}
}

// makeRoster builds a valid roster payload: disjoint per-section student
// groups, plus one cross-enrollment per section, and the first section
// co-taught.
func makeRoster(school roster.School, teachers []roster.Teacher, b rosterBlocks, sections, perSection int, domain string, names *nameSeq) rosterPayload {
	window := ComputeBirthYearWindow(time.Now(), school.LowGrade, school.HighGrade)
	dob := fmt.Sprintf("%d-05-15", (window.Min+window.Max)/2)

	var p rosterPayload
	for i := 0; i < sections; i++ {
		s := roster.Section{
			SchoolID:      school.SchoolID,
			SectionID:     b.Section.ID(i),
			TeacherID:     teachers[i%len(teachers)].TeacherID,
			Name:          "Math " + alphaSuffix(i),
			SectionNumber: "M" + alphaSuffix(i),
			Grade:         "3",
			Subject:       "Math",
		}
		if i == 0 && len(teachers) > 1 {
			s.Teacher2ID = teachers[1].TeacherID
		}
		p.Sections = append(p.Sections, s)
	}
	genders := []string{"F", "M"}
	for i := 0; i < sections*perSection; i++ {
		first, last := names.next()
		p.Students = append(p.Students, roster.Student{
			SchoolID:  school.SchoolID,
			StudentID: b.Student.ID(i),
			Email:     emailFor(first, last, domain),
			FirstName: first,
			LastName:  last,
			Grade:     "3",
			Gender:    genders[i%2],
			DOB:       dob,
		})
	}
	for i := 0; i < sections; i++ {
		for j := 0; j < perSection; j++ {
			p.Enrollments = append(p.Enrollments, roster.Enrollment{
				SchoolID:  school.SchoolID,
				SectionID: p.Sections[i].SectionID,
				StudentID: p.Students[i*perSection+j].StudentID,
			})
		}
		// Cross-enroll this section's first student into the next section.
		p.Enrollments = append(p.Enrollments, roster.Enrollment{
			SchoolID:  school.SchoolID,
			SectionID: p.Sections[(i+1)%sections].SectionID,
			StudentID: p.Students[i*perSection].StudentID,
		})
	}
	return p
}

func newTestDistrict(t *testing.T, cfg *config.Config, gen generate.Generator, registry *roster.Registry, index int) *District {
	t.Helper()
	return New(index, cfg, testRunner(t, gen, cfg.Generator.MaxAttempts), registry, progress.Nop{}, zap.NewNop())
}
