package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ibex-go/internal/app"
	"ibex-go/internal/backup"
	"ibex-go/internal/config"
	"ibex-go/internal/extract"
	"ibex-go/internal/presentation"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file (or defaults) using the standard paths.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.LoadOrDefault(defaults["config_path"], defaults["log_dir"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// resolveBackupDir picks the backup to operate on: the explicit flag wins,
// otherwise the configured (or platform) search root must hold exactly one
// backup.
func resolveBackupDir(cfg *config.Config, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	root := cfg.BackupRoot
	if root == "" {
		var err error
		root, err = backup.DefaultSearchRoot()
		if err != nil {
			return "", err
		}
	}

	backups, err := backup.Discover(root)
	if err != nil {
		return "", err
	}
	switch len(backups) {
	case 0:
		return "", fmt.Errorf("no backups found under %s", root)
	case 1:
		return backups[0].Path, nil
	default:
		return "", fmt.Errorf("%d backups found under %s; pick one with --backup (see 'ibex list')", len(backups), root)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ibex",
	Short:         "Extract media from local device backups",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		root := cfg.BackupRoot
		if root == "" {
			root, err = backup.DefaultSearchRoot()
			if err != nil {
				return err
			}
		}

		backups, err := backup.Discover(root)
		if err != nil {
			return err
		}

		presentation.PrintBackups(os.Stdout, backups)
		return nil
	},
}

// extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract camera-roll media from a backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		backupFlag, _ := cmd.Flags().GetString("backup")
		output, _ := cmd.Flags().GetString("output")
		layoutFlag, _ := cmd.Flags().GetString("layout")
		sinceFlag, _ := cmd.Flags().GetString("since")
		separatorFlag, _ := cmd.Flags().GetString("date-separator")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		verbose, _ := cmd.Flags().GetBool("verbose")

		// Flags override config.
		if output == "" {
			output = cfg.OutputDir
		}
		if output == "" {
			return fmt.Errorf("no output directory: pass --output or set output_dir in the config")
		}
		if layoutFlag == "" {
			layoutFlag = cfg.Layout
		}
		if separatorFlag == "" {
			separatorFlag = cfg.DateSeparator
		}
		includeTrashed := cfg.IncludeTrashed
		if cmd.Flags().Changed("include-trashed") {
			includeTrashed, _ = cmd.Flags().GetBool("include-trashed")
		}
		prependDate := cfg.PrependDate
		if cmd.Flags().Changed("prepend-date") {
			prependDate, _ = cmd.Flags().GetBool("prepend-date")
		}
		exifFallback := cfg.ExifFallback
		if cmd.Flags().Changed("exif-fallback") {
			exifFallback, _ = cmd.Flags().GetBool("exif-fallback")
		}

		layout, err := extract.ParseLayout(layoutFlag)
		if err != nil {
			return err
		}
		separator, err := extract.ParseSeparator(separatorFlag)
		if err != nil {
			return err
		}

		var since *extract.Date
		if sinceFlag != "" {
			parsed, err := time.ParseInLocation("2006-01-02", sinceFlag, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --since date %q, use YYYY-MM-DD", sinceFlag)
			}
			d := extract.DateOf(parsed)
			since = &d
		}

		backupDir, err := resolveBackupDir(cfg, backupFlag)
		if err != nil {
			return err
		}

		if !dryRun {
			if err := os.MkdirAll(output, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}

		a, err := app.New(cfg, backupDir, verbose)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := extract.Options{
			OutputRoot:     output,
			Layout:         layout,
			Since:          since,
			IncludeTrashed: includeTrashed,
			DryRun:         dryRun,
			PrependDate:    prependDate,
			DateSeparator:  separator,
		}

		sum, err := a.Extract(opts, exifFallback)
		if err != nil {
			return err
		}

		fmt.Println(summaryLine(sum, dryRun))
		return nil
	},
}

// summaryLine renders the post-run result line.
func summaryLine(sum extract.Summary, dryRun bool) string {
	verb := "Extracted"
	if dryRun {
		verb = "Dry run: would extract"
	}
	return fmt.Sprintf("%s %d file(s) (%d duplicate, %d trashed, %d too old, %d ineligible)",
		verb, sum.Copied, sum.Duplicates, sum.Trashed, sum.TooOld, sum.Ineligible)
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["log_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.LoadOrDefault(defaults["config_path"], defaults["log_dir"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Backup Root:     %s\n", cfg.BackupRoot)
		fmt.Printf("Output Dir:      %s\n", cfg.OutputDir)
		fmt.Printf("Log Dir:         %s\n", cfg.LogDir)
		fmt.Printf("Layout:          %s\n", cfg.Layout)
		fmt.Printf("Date Separator:  %s\n", cfg.DateSeparator)
		fmt.Printf("Prepend Date:    %t\n", cfg.PrependDate)
		fmt.Printf("Include Trashed: %t\n", cfg.IncludeTrashed)
		fmt.Printf("EXIF Fallback:   %t\n", cfg.ExifFallback)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// extract flags
	extractCmd.Flags().String("backup", "", "Path to the backup directory")
	extractCmd.Flags().StringP("output", "o", "", "Output directory for extracted media")
	extractCmd.Flags().String("layout", "", "Destination layout: flat, ym or ymd")
	extractCmd.Flags().String("since", "", "Only extract files modified on or after this date (YYYY-MM-DD)")
	extractCmd.Flags().Bool("include-trashed", false, "Extract trashed items too (named with a _DELETED suffix)")
	extractCmd.Flags().Bool("dry-run", false, "Report what would be extracted without writing anything")
	extractCmd.Flags().Bool("prepend-date", false, "Prefix filenames with the modification date")
	extractCmd.Flags().String("date-separator", "", "Date prefix style: dash, underscore or none")
	extractCmd.Flags().Bool("exif-fallback", false, "Recover missing timestamps from EXIF data")
	extractCmd.Flags().BoolP("verbose", "v", false, "Verbose diagnostics")

	// root commands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(configCmd)
}
