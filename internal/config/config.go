// Package config holds the explicit configuration value object passed into
// the orchestration components. Values come from defaults, an optional
// YAML file, environment variables, and finally CLI flags, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Identifier styles communicated to the generator.
const (
	IDStyleSequential  = "sequential"   // zero-padded numeric blocks
	IDStyleHighEntropy = "high-entropy" // random alphanumeric, no patterns
)

// Config is the full tool configuration.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Counts    CountsConfig    `yaml:"counts"`
	Output    OutputConfig    `yaml:"output"`

	// IDStyle selects sequential or high-entropy identifiers. It changes
	// the instructions given to the generator and locally allocated
	// fixture IDs, not the orchestration.
	IDStyle string `yaml:"id_style"`

	// CoTeaching asks for one co-taught section per school.
	CoTeaching bool `yaml:"co_teaching"`
}

// GeneratorConfig configures the generation service boundary.
type GeneratorConfig struct {
	Model             string `yaml:"model"`
	APIKey            string `yaml:"api_key"`
	MaxAttempts       int    `yaml:"max_attempts"`
	TransientDelay    string `yaml:"transient_delay"`
	RateLimitCooldown string `yaml:"rate_limit_cooldown"`

	// MaxSchoolsPerCall bounds one structural slice so a single request
	// stays under payload/token limits.
	MaxSchoolsPerCall int `yaml:"max_schools_per_call"`
}

// CountsConfig sizes one run.
type CountsConfig struct {
	Districts          int `yaml:"districts"`
	SchoolsPerDistrict int `yaml:"schools_per_district"`
	TeachersPerSchool  int `yaml:"teachers_per_school"`
	StaffPerSchool     int `yaml:"staff_per_school"`
	SectionsPerSchool  int `yaml:"sections_per_school"`
	StudentsPerSection int `yaml:"students_per_section"`
}

// OutputConfig configures the dataset exporter.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // csv or xlsx
}

// DefaultConfig mirrors the counts the original prompt hardcoded.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Model:             "gemini-2.5-flash",
			MaxAttempts:       4,
			TransientDelay:    "2s",
			RateLimitCooldown: "30s",
			MaxSchoolsPerCall: 3,
		},
		Counts: CountsConfig{
			Districts:          1,
			SchoolsPerDistrict: 3,
			TeachersPerSchool:  10,
			StaffPerSchool:     10,
			SectionsPerSchool:  10,
			StudentsPerSection: 12,
		},
		Output: OutputConfig{
			Dir:    "school_district_data",
			Format: "csv",
		},
		IDStyle:    IDStyleSequential,
		CoTeaching: true,
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. API_KEY is the
// name the original scripts used in their .env files; GEMINI_API_KEY wins
// when both are set.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("API_KEY"); key != "" {
		c.Generator.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Generator.APIKey = key
	}
	if model := os.Getenv("ROSTERGEN_MODEL"); model != "" {
		c.Generator.Model = model
	}
}

// Validate rejects configurations the orchestration cannot honor.
func (c *Config) Validate() error {
	if c.Generator.MaxAttempts < 1 {
		return fmt.Errorf("generator.max_attempts must be >= 1, got %d", c.Generator.MaxAttempts)
	}
	if c.Generator.MaxSchoolsPerCall < 1 {
		return fmt.Errorf("generator.max_schools_per_call must be >= 1, got %d", c.Generator.MaxSchoolsPerCall)
	}
	if c.IDStyle != IDStyleSequential && c.IDStyle != IDStyleHighEntropy {
		return fmt.Errorf("id_style must be %q or %q, got %q", IDStyleSequential, IDStyleHighEntropy, c.IDStyle)
	}
	if c.Output.Format != "csv" && c.Output.Format != "xlsx" {
		return fmt.Errorf("output.format must be csv or xlsx, got %q", c.Output.Format)
	}
	counts := map[string]int{
		"districts":            c.Counts.Districts,
		"schools_per_district": c.Counts.SchoolsPerDistrict,
		"teachers_per_school":  c.Counts.TeachersPerSchool,
		"staff_per_school":     c.Counts.StaffPerSchool,
		"sections_per_school":  c.Counts.SectionsPerSchool,
		"students_per_section": c.Counts.StudentsPerSection,
	}
	for name, n := range counts {
		if n < 1 {
			return fmt.Errorf("counts.%s must be >= 1, got %d", name, n)
		}
	}
	return nil
}

// GetTransientDelay returns the transient retry delay as a duration.
func (c *Config) GetTransientDelay() time.Duration {
	d, err := time.ParseDuration(c.Generator.TransientDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// GetRateLimitCooldown returns the rate-limit cooldown as a duration.
func (c *Config) GetRateLimitCooldown() time.Duration {
	d, err := time.ParseDuration(c.Generator.RateLimitCooldown)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
