package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jscheck/internal/analyzer"
	"jscheck/internal/config"
	"jscheck/internal/fixer"
	"jscheck/internal/models"
	"jscheck/internal/watcher"
)

var (
	formatFlag         string
	watchFlag          bool
	configFlag         string
	generateConfigFlag bool
	fixFlag            bool
	verboseFlag        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jscheck [files or directories]",
	Short: "A JavaScript linter that canonicalizes loops into for...of",
	Long: `jscheck is a static analysis tool that scans JavaScript code for loops
that can be written as for...of, plus a few layout and declaration rules,
and can apply the fixes it proves safe.

Examples:
  jscheck .                            # Analyze current directory
  jscheck src/app.js src/util.js       # Analyze specific files
  jscheck --fix src                    # Apply safe fixes in place
  jscheck --format=json .              # Output results in JSON format
  jscheck --config=.jscheck.yml .      # Use custom config
  jscheck --watch src                  # Re-analyze on change
  jscheck --generate-config            # Generate sample config file`,
	Run: runAnalysis,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (console, json)")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch mode for development")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().BoolVar(&generateConfigFlag, "generate-config", false, "Generate sample configuration file")
	rootCmd.Flags().BoolVar(&fixFlag, "fix", false, "Write safe fixes back to the files")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output and debug logging")
}

func runAnalysis(cmd *cobra.Command, args []string) {
	if generateConfigFlag {
		generateConfig()
		return
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		color.Red("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		color.Red("Invalid options: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stderr, cfg.Output.Verbose)

	if len(args) == 0 {
		args = []string{"."}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jsFiles := collectAll(cfg, args)
	if len(jsFiles) == 0 && !watchFlag {
		color.Yellow("⚠️  No JavaScript files found to analyze\n")
		return
	}

	app := newApp(cfg, logger, os.Stdout)
	result, err := app.run(ctx, jsFiles)
	if err != nil {
		color.Red("Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if watchFlag {
		if err := app.watch(ctx, args); err != nil {
			color.Red("Watch failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if result.Score < cfg.Analysis.ScoreThresholds.Fair {
		os.Exit(1)
	}
}

// applyFlags lets command line flags override the loaded configuration.
func applyFlags(cfg *config.Config) {
	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if verboseFlag {
		cfg.Output.Verbose = true
	}
	if fixFlag {
		cfg.Fix.Enabled = true
	}
	if cfg.Output.Format == "json" {
		cfg.Output.Colors = false
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// app bundles one configured analysis run.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	out      io.Writer
	analyzer *analyzer.Analyzer
	report   *analyzer.ReportGenerator
	fixer    *fixer.Fixer
}

func newApp(cfg *config.Config, logger *slog.Logger, out io.Writer) *app {
	a := analyzer.NewAnalyzerWithConfig(cfg, logger)
	return &app{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		analyzer: a,
		report:   analyzer.NewReportGeneratorWithConfig(cfg),
		fixer:    fixer.New(a, cfg.Fix.MaxPasses, logger),
	}
}

// run optionally fixes files, then analyzes them and writes the report.
func (a *app) run(ctx context.Context, files []string) (*models.AnalysisResult, error) {
	console := a.cfg.Output.Format != "json"

	if a.cfg.Fix.Enabled {
		fixedFiles, applied := a.fixFiles(ctx, files)
		if console {
			color.Green("🔧 Applied %d fixes in %d files\n", applied, fixedFiles)
		}
	}

	if console {
		if a.cfg.Output.Verbose {
			color.Cyan("🔍 Analyzing %d JavaScript files with %d detectors...\n", len(files), a.analyzer.GetDetectorCount())
			if configFlag != "" {
				color.Cyan("📋 Using configuration: %s\n", configFlag)
			}
			color.Cyan("🎯 Detectors: %s\n\n", strings.Join(a.analyzer.GetDetectorNames(), ", "))
		} else {
			color.Cyan("🔍 Analyzing %d JavaScript files...\n\n", len(files))
		}
	}

	result, err := a.analyzer.AnalyzeFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	report := a.report.Generate(result)
	if a.cfg.Output.OutputFile != "" {
		if err := writeReportToFile(report, a.cfg.Output.OutputFile); err != nil {
			color.Red("Failed to write report to file: %v\n", err)
		} else {
			color.Green("📄 Report saved to: %s\n", a.cfg.Output.OutputFile)
		}
	} else {
		fmt.Fprint(a.out, report)
	}

	return result, nil
}

func (a *app) fixFiles(ctx context.Context, files []string) (fixedFiles, applied int) {
	for _, file := range files {
		res, err := a.fixer.FixFile(ctx, file)
		if err != nil {
			a.logger.Warn("cannot fix file", "file", file, "error", err)
			continue
		}
		if res.Changed {
			fixedFiles++
			applied += res.Applied
			a.logger.Info("fixed file", "file", file, "fixes", res.Applied, "passes", res.Passes)
		}
	}
	return fixedFiles, applied
}

// watch re-runs the analysis for changed files until ctx is cancelled.
func (a *app) watch(ctx context.Context, paths []string) error {
	fw, err := watcher.NewFileWatcher(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	err = fw.Watch(paths, func(files []string) error {
		color.Cyan("\n🔄 %d file(s) changed\n", len(files))
		_, err := a.run(ctx, files)
		return err
	})
	if err != nil {
		return err
	}

	color.Cyan("👀 Watching %d directories, press Ctrl+C to stop\n", len(fw.GetWatchedPaths()))
	<-ctx.Done()
	return nil
}

func writeReportToFile(report, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(filePath, []byte(report), 0644)
}

func generateConfig() {
	configPath := ".jscheck.yml"
	if err := config.GenerateConfig(configPath); err != nil {
		color.Red("Failed to generate config file: %v\n", err)
		os.Exit(1)
	}
	color.Green("✅ Generated sample configuration file: %s\n", configPath)
	color.Cyan("📝 Edit this file to customize jscheck behavior\n")
	color.Cyan("🚀 Run 'jscheck --config=%s .' to use it\n", configPath)
}

func collectAll(cfg *config.Config, args []string) []string {
	var jsFiles []string
	for _, arg := range args {
		files, err := collectJSFiles(cfg, arg)
		if err != nil {
			color.Red("Error collecting files from %s: %v\n", arg, err)
			continue
		}
		jsFiles = append(jsFiles, files...)
	}
	return jsFiles
}

// collectJSFiles recursively finds all JavaScript sources in the given path.
// A file named explicitly is taken as is.
func collectJSFiles(cfg *config.Config, path string) ([]string, error) {
	var jsFiles []string

	err := filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := info.Name()
			if filePath != path && (name == "node_modules" || name == ".git" || cfg.IsExcluded(filePath)) {
				return filepath.SkipDir
			}
			return nil
		}

		if filePath == path || (config.HasSourceExtension(filePath) && !strings.HasSuffix(filePath, ".min.js")) {
			jsFiles = append(jsFiles, filePath)
		}

		return nil
	})

	return jsFiles, err
}
