package district

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"rostergen/internal/config"
	"rostergen/internal/generate"
	"rostergen/internal/progress"
	"rostergen/internal/roster"
)

// Exporter flattens one district's dataset into tabular files.
type Exporter interface {
	Export(dir string, ds *roster.Dataset) error
}

// Run executes a whole generation run: districts in sequence, each one a
// structural phase followed by per-school rostering, ending in an export of
// whatever succeeded. One generation call is outstanding at a time.
type Run struct {
	Cfg      *config.Config
	Gen      generate.Generator
	Exporter Exporter
	Reporter progress.Reporter
	Log      *zap.Logger

	// Sleep overrides the retry delays. Tests only.
	Sleep generate.Sleeper
}

// Execute drives the run. Structural exhaustion abandons that district;
// roster exhaustion abandons only that school. The error return is reserved
// for conditions that make continuing pointless: cancellation, export I/O
// failure, or every district failing.
func (r *Run) Execute(ctx context.Context) error {
	runner := &generate.Runner{
		Gen:      r.Gen,
		Attempts: r.Cfg.Generator.MaxAttempts,
		Backoff: generate.Backoff{
			Transient: r.Cfg.GetTransientDelay(),
			RateLimit: r.Cfg.GetRateLimitCooldown(),
		},
		Reporter: r.Reporter,
		Sleep:    r.Sleep,
	}
	registry := roster.NewRegistry()

	exported := 0
	for i := 1; i <= r.Cfg.Counts.Districts; i++ {
		label := fmt.Sprintf("district %d", i)
		d := New(i, r.Cfg, runner, registry, r.Reporter, r.Log)

		structure, err := d.BuildStructure(ctx)
		if err != nil {
			if ctxDone(err) {
				return err
			}
			r.Reporter.UnitFailed(label, err)
			r.Log.Warn("district abandoned", zap.Int("district", i), zap.Error(err))
			continue
		}

		ds := &roster.Dataset{
			Schools:  structure.Schools,
			Teachers: structure.Teachers,
			Staff:    structure.Staff,
		}
		for _, school := range structure.Schools {
			schoolLabel := fmt.Sprintf("district %d school %s", i, school.SchoolID)
			res, err := d.BuildRoster(ctx, school, structure.Teachers)
			if err != nil {
				if ctxDone(err) {
					return err
				}
				r.Reporter.UnitFailed(schoolLabel, err)
				r.Log.Warn("school roster skipped",
					zap.Int("district", i),
					zap.String("school", school.SchoolID),
					zap.Error(err))
				continue
			}
			ds.Students = append(ds.Students, res.Students...)
			ds.Sections = append(ds.Sections, res.Sections...)
			ds.Enrollments = append(ds.Enrollments, res.Enrollments...)
			r.Reporter.UnitDone(schoolLabel, fmt.Sprintf("%d students, %d sections, %d enrollments",
				len(res.Students), len(res.Sections), len(res.Enrollments)))
		}

		dir := filepath.Join(r.Cfg.Output.Dir, fmt.Sprintf("district%d", i))
		if err := r.Exporter.Export(dir, ds); err != nil {
			return fmt.Errorf("export %s: %w", label, err)
		}
		exported++
		r.Reporter.UnitDone(label, fmt.Sprintf("%d schools exported to %s", len(ds.Schools), dir))
	}

	if exported == 0 {
		return fmt.Errorf("all %d districts failed", r.Cfg.Counts.Districts)
	}
	return nil
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
