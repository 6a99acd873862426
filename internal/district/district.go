// Package district orchestrates the two generation phases of one run:
// the structural phase (schools, teachers, staff) built up through bounded
// batch slices, and the roster phase (students, sections, enrollments)
// assembled one school at a time.
package district

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"rostergen/internal/config"
	"rostergen/internal/generate"
	"rostergen/internal/progress"
	"rostergen/internal/roster"
)

// District drives generation for one district. All state it mutates (the
// shared uniqueness registry, its identifier allocator) is owned by the
// sequential control flow; nothing here is safe for concurrent use.
type District struct {
	Index  int
	Domain string

	cfg      *config.Config
	runner   *generate.Runner
	alloc    *Allocator
	registry *roster.Registry
	check    *roster.Validator
	reporter progress.Reporter
	log      *zap.Logger
}

// New creates the orchestrator for district index (1-based). The registry
// is shared across districts so uniqueness holds run-wide.
func New(index int, cfg *config.Config, runner *generate.Runner, registry *roster.Registry, rep progress.Reporter, log *zap.Logger) *District {
	return &District{
		Index:    index,
		Domain:   fmt.Sprintf("district%d.net", index),
		cfg:      cfg,
		runner:   runner,
		alloc:    NewAllocator(cfg.IDStyle, index),
		registry: registry,
		check:    roster.NewValidator(),
		reporter: rep,
		log:      log,
	}
}

// Structure is the validated output of the structural phase.
type Structure struct {
	Schools  []roster.School
	Teachers []roster.Teacher
	Staff    []roster.Staff
}

// TeachersOf filters the district's teachers down to one school.
func (s *Structure) TeachersOf(schoolID string) []roster.Teacher {
	var out []roster.Teacher
	for _, t := range s.Teachers {
		if t.SchoolID == schoolID {
			out = append(out, t)
		}
	}
	return out
}

// structuralPayload is the JSON shape of one structural slice response.
type structuralPayload struct {
	Schools  []roster.School  `json:"schools"`
	Teachers []roster.Teacher `json:"teachers"`
	Staff    []roster.Staff   `json:"staff"`
}

// BuildStructure produces the district's full set of schools, teachers,
// and staff. A single call cannot safely request an unbounded number of
// schools, so the target is reached through bounded slices; any slice
// exhausting its retries aborts the whole district, because structural
// data without matching rosters is useless downstream.
func (d *District) BuildStructure(ctx context.Context) (*Structure, error) {
	out := &Structure{}
	remaining := d.cfg.Counts.SchoolsPerDistrict

	for slice := 1; remaining > 0; slice++ {
		n := remaining
		if n > d.cfg.Generator.MaxSchoolsPerCall {
			n = d.cfg.Generator.MaxSchoolsPerCall
		}

		p := structuralParams{
			Slice:        slice,
			Schools:      n,
			Teachers:     d.cfg.Counts.TeachersPerSchool,
			Staff:        d.cfg.Counts.StaffPerSchool,
			Domain:       d.Domain,
			SchoolBlock:  d.alloc.Reserve(kindSchool, n),
			TeacherBlock: d.alloc.Reserve(kindTeacher, n*d.cfg.Counts.TeachersPerSchool),
			StaffBlock:   d.alloc.Reserve(kindStaff, n*d.cfg.Counts.StaffPerSchool),
			AvoidFirst:   d.registry.FirstNames(),
			AvoidLast:    d.registry.LastNames(),
		}
		req := generate.Request{
			Label:  fmt.Sprintf("district %d structure slice %d", d.Index, slice),
			System: promptSystem,
			Prompt: structuralPrompt(p),
			Schema: structuralSchema(),
		}

		err := d.runner.Do(ctx, req, func(raw []byte) error {
			return d.decodeStructural(raw, p, out)
		})
		if err != nil {
			return nil, fmt.Errorf("structural phase: %w", err)
		}

		d.log.Info("structural slice accepted",
			zap.Int("district", d.Index),
			zap.Int("slice", slice),
			zap.Int("schools", n))
		remaining -= n
	}

	if err := d.injectFixtures(out); err != nil {
		return nil, fmt.Errorf("fixture injection: %w", err)
	}
	return out, nil
}

// decodeStructural parses and validates one slice payload, claiming its
// identifiers, emails, and names on a stage that only commits when the
// whole slice is acceptable.
func (d *District) decodeStructural(raw []byte, p structuralParams, out *Structure) error {
	var payload structuralPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if got := len(payload.Schools); got != p.Schools {
		return fmt.Errorf("expected %d schools, got %d", p.Schools, got)
	}
	if want, got := p.Schools*p.Teachers, len(payload.Teachers); got != want {
		return fmt.Errorf("expected %d teachers, got %d", want, got)
	}
	if want, got := p.Schools*p.Staff, len(payload.Staff); got != want {
		return fmt.Errorf("expected %d staff, got %d", want, got)
	}

	stage := d.registry.Stage()
	schoolIDs := make(map[string]struct{}, p.Schools)
	teachersPer := make(map[string]int, p.Schools)
	staffPer := make(map[string]int, p.Schools)

	for _, s := range payload.Schools {
		if err := d.check.School(s); err != nil {
			return err
		}
		if !p.SchoolBlock.Contains(s.SchoolID) {
			return fmt.Errorf("school id %q outside assigned block", s.SchoolID)
		}
		if err := stage.ClaimID(s.SchoolID); err != nil {
			return err
		}
		if err := stage.ClaimEmail(s.PrincipalEmail); err != nil {
			return err
		}
		schoolIDs[s.SchoolID] = struct{}{}
	}

	for _, t := range payload.Teachers {
		if err := d.check.Teacher(t); err != nil {
			return err
		}
		if !p.TeacherBlock.Contains(t.TeacherID) {
			return fmt.Errorf("teacher id %q outside assigned block", t.TeacherID)
		}
		if _, ok := schoolIDs[t.SchoolID]; !ok {
			return fmt.Errorf("teacher %s references unknown school %q", t.TeacherID, t.SchoolID)
		}
		teachersPer[t.SchoolID]++
		if err := stage.ClaimID(t.TeacherID); err != nil {
			return err
		}
		if err := stage.ClaimEmail(t.Email); err != nil {
			return err
		}
		if err := stage.ClaimName(t.FirstName, t.LastName); err != nil {
			return err
		}
	}

	for _, s := range payload.Staff {
		if err := d.check.Staff(s); err != nil {
			return err
		}
		if !p.StaffBlock.Contains(s.StaffID) {
			return fmt.Errorf("staff id %q outside assigned block", s.StaffID)
		}
		if _, ok := schoolIDs[s.SchoolID]; !ok {
			return fmt.Errorf("staff %s references unknown school %q", s.StaffID, s.SchoolID)
		}
		staffPer[s.SchoolID]++
		if err := stage.ClaimID(s.StaffID); err != nil {
			return err
		}
		if err := stage.ClaimEmail(s.Email); err != nil {
			return err
		}
		if err := stage.ClaimName(s.FirstName, s.LastName); err != nil {
			return err
		}
	}

	// Totals alone would let the generator pile everyone into one school.
	for id := range schoolIDs {
		if got := teachersPer[id]; got != p.Teachers {
			return fmt.Errorf("school %s has %d teachers, want %d", id, got, p.Teachers)
		}
		if got := staffPer[id]; got != p.Staff {
			return fmt.Errorf("school %s has %d staff, want %d", id, got, p.Staff)
		}
	}

	stage.Commit()
	out.Schools = append(out.Schools, payload.Schools...)
	out.Teachers = append(out.Teachers, payload.Teachers...)
	out.Staff = append(out.Staff, payload.Staff...)
	return nil
}

// injectFixtures appends the two deterministic staff records every district
// carries regardless of generator randomness: a district administrator at
// the first school, and a dual-role clone of the first teacher. Both are
// validated like generated output, but their identities are deliberate
// repeats (the administrator across districts, the clone of its teacher),
// so neither claims names; the clone's email is the teacher's too.
func (d *District) injectFixtures(s *Structure) error {
	if len(s.Schools) == 0 || len(s.Teachers) == 0 {
		return fmt.Errorf("no structural data to attach fixtures to")
	}

	block := d.alloc.Reserve(kindStaff, 2)
	admin := roster.Staff{
		SchoolID:   s.Schools[0].SchoolID,
		StaffID:    block.ID(0),
		Email:      "district.administrator@" + d.Domain,
		FirstName:  "District",
		LastName:   "Administrator",
		Department: "District Office",
		Title:      "District Administrator",
	}
	t := s.Teachers[0]
	dual := roster.Staff{
		SchoolID:   t.SchoolID,
		StaffID:    block.ID(1),
		Email:      t.Email,
		FirstName:  t.FirstName,
		LastName:   t.LastName,
		Department: "Athletics",
		Title:      "Coach",
	}

	// The administrator's synthetic name repeats in every district, so only
	// its fresh staff_id and per-district email go into the registry.
	stage := d.registry.Stage()
	if err := d.check.Staff(admin); err != nil {
		return err
	}
	if err := stage.ClaimID(admin.StaffID); err != nil {
		return err
	}
	if err := stage.ClaimEmail(admin.Email); err != nil {
		return err
	}
	if err := d.check.Staff(dual); err != nil {
		return err
	}
	if err := stage.ClaimID(dual.StaffID); err != nil {
		return err
	}
	stage.Commit()

	s.Staff = append(s.Staff, admin, dual)
	d.reporter.Info("district %d: added district administrator %s and dual-role staff %s", d.Index, admin.StaffID, dual.StaffID)
	d.log.Info("fixtures injected",
		zap.Int("district", d.Index),
		zap.String("admin_staff_id", admin.StaffID),
		zap.String("dual_role_staff_id", dual.StaffID),
		zap.String("dual_role_teacher_id", t.TeacherID))
	return nil
}
