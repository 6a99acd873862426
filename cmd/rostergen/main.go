package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rostergen/internal/config"
	"rostergen/internal/district"
	"rostergen/internal/export"
	"rostergen/internal/generate"
	"rostergen/internal/logging"
	"rostergen/internal/progress"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// generate flags
	flagDistricts   int
	flagSchools     int
	flagTeachers    int
	flagStaff       int
	flagSections    int
	flagStudents    int
	flagCoTeaching  bool
	flagIDStyle     string
	flagOut         string
	flagFormat      string
	flagModel       string
	flagInteractive bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rostergen",
	Short: "rostergen - synthetic school district roster generator",
	Long: `rostergen fabricates synthetic school district rostering data
(schools, teachers, staff, students, sections, enrollments) by driving a
generative AI JSON API through batched, schema-validated, retry-orchestrated
requests, and exports one directory of tabular files per district.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate roster data for one or more districts",
	Long: `Runs the full generation workflow:
  1. Structural phase: schools, teachers, and staff, requested in bounded
     slices so each call stays under payload limits
  2. Fixture injection: one district administrator and one dual-role staff
     record, validated like any generated output
  3. Roster phase: students, sections, and enrollments per school
  4. Export: six tabular files per district

The API key is read from GEMINI_API_KEY or API_KEY (a .env file works).`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Match the original scripts: a local .env can carry the API key.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	if flagInteractive {
		if err := promptCounts(cfg); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Generator.APIKey == "" {
		return fmt.Errorf("no API key: set GEMINI_API_KEY or API_KEY, or generator.api_key in %s", configPath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := generate.NewGeminiGenerator(ctx, cfg.Generator.APIKey, cfg.Generator.Model)
	if err != nil {
		return err
	}

	var exporter district.Exporter = export.CSV{}
	if cfg.Output.Format == "xlsx" {
		exporter = export.XLSX{}
	}

	run := &district.Run{
		Cfg:      cfg,
		Gen:      gen,
		Exporter: exporter,
		Reporter: progress.NewConsole(os.Stdout),
		Log:      logger,
	}
	return run.Execute(ctx)
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("districts") {
		cfg.Counts.Districts = flagDistricts
	}
	if set("schools") {
		cfg.Counts.SchoolsPerDistrict = flagSchools
	}
	if set("teachers") {
		cfg.Counts.TeachersPerSchool = flagTeachers
	}
	if set("staff") {
		cfg.Counts.StaffPerSchool = flagStaff
	}
	if set("sections") {
		cfg.Counts.SectionsPerSchool = flagSections
	}
	if set("students") {
		cfg.Counts.StudentsPerSection = flagStudents
	}
	if set("co-teaching") {
		cfg.CoTeaching = flagCoTeaching
	}
	if set("id-style") {
		cfg.IDStyle = flagIDStyle
	}
	if set("out") {
		cfg.Output.Dir = flagOut
	}
	if set("format") {
		cfg.Output.Format = flagFormat
	}
	if set("model") {
		cfg.Generator.Model = flagModel
	}
}

// promptCounts collects run sizes interactively, keeping the current value
// on an empty answer.
func promptCounts(cfg *config.Config) error {
	in := bufio.NewScanner(os.Stdin)
	ask := func(label string, current int) (int, error) {
		fmt.Printf("%s [%d]: ", label, current)
		if !in.Scan() {
			return current, in.Err()
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			return current, nil
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0, fmt.Errorf("%s: not a number: %q", label, text)
		}
		return n, nil
	}

	var err error
	if cfg.Counts.Districts, err = ask("Districts", cfg.Counts.Districts); err != nil {
		return err
	}
	if cfg.Counts.SchoolsPerDistrict, err = ask("Schools per district", cfg.Counts.SchoolsPerDistrict); err != nil {
		return err
	}
	if cfg.Counts.TeachersPerSchool, err = ask("Teachers per school", cfg.Counts.TeachersPerSchool); err != nil {
		return err
	}
	if cfg.Counts.StaffPerSchool, err = ask("Staff per school", cfg.Counts.StaffPerSchool); err != nil {
		return err
	}
	if cfg.Counts.SectionsPerSchool, err = ask("Sections per school", cfg.Counts.SectionsPerSchool); err != nil {
		return err
	}
	cfg.Counts.StudentsPerSection, err = ask("Students per section", cfg.Counts.StudentsPerSection)
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "rostergen.yaml", "Path to YAML config file")

	generateCmd.Flags().IntVar(&flagDistricts, "districts", 1, "Number of districts to generate")
	generateCmd.Flags().IntVar(&flagSchools, "schools", 3, "Schools per district")
	generateCmd.Flags().IntVar(&flagTeachers, "teachers", 10, "Teachers per school")
	generateCmd.Flags().IntVar(&flagStaff, "staff", 10, "Staff per school")
	generateCmd.Flags().IntVar(&flagSections, "sections", 10, "Sections per school")
	generateCmd.Flags().IntVar(&flagStudents, "students", 12, "Students per section")
	generateCmd.Flags().BoolVar(&flagCoTeaching, "co-teaching", true, "Require one co-taught section per school")
	generateCmd.Flags().StringVar(&flagIDStyle, "id-style", config.IDStyleSequential, "Identifier style: sequential or high-entropy")
	generateCmd.Flags().StringVar(&flagOut, "out", "school_district_data", "Output directory")
	generateCmd.Flags().StringVar(&flagFormat, "format", "csv", "Export format: csv or xlsx")
	generateCmd.Flags().StringVar(&flagModel, "model", "gemini-2.5-flash", "Generation model")
	generateCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Prompt for counts on stdin")

	rootCmd.AddCommand(generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
