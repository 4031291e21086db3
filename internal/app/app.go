package app

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"ibex-go/internal/backup"
	"ibex-go/internal/catalog"
	"ibex-go/internal/config"
	"ibex-go/internal/exif"
	"ibex-go/internal/extract"
	"ibex-go/internal/fs"
	"ibex-go/internal/metadata"
	"ibex-go/internal/presentation"
	"ibex-go/internal/trash"
)

// App is the wiring layer between the CLI and the extraction pipeline.
// It validates the backup, opens the catalog and owns the run-scoped
// logger, so several backups can be processed in one process lifetime
// without shared state.
type App struct {
	cfg     *config.Config
	backup  backup.Backup
	catalog *catalog.Catalog
	logger  extract.Logger
	logFile io.Closer
}

// New creates a fully wired App for one backup directory. The backup is
// gated (encryption, format version) before the catalog is touched.
// The caller must call Close when done.
func New(cfg *config.Config, backupDir string, verbose bool) (*App, error) {
	b, err := backup.Load(backupDir)
	if err != nil {
		return nil, fmt.Errorf("loading backup: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()[:8]
	logger, logFile, err := newLogger(cfg.LogDir, runID, verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	cat, err := catalog.Open(backupDir)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	return &App{
		cfg:     cfg,
		backup:  b,
		catalog: cat,
		logger:  &slogAdapter{l: logger},
		logFile: logFile,
	}, nil
}

// Backup returns the validated backup this App operates on.
func (a *App) Backup() backup.Backup {
	return a.backup
}

// Extract runs one extraction pass. The trash set is built fresh for this
// run; exifFallback swaps in the EXIF capture-time reader for records
// whose metadata blob has no timestamps.
func (a *App) Extract(opts extract.Options, exifFallback bool) (extract.Summary, error) {
	trashSet := trash.BuildSet(a.catalog, a.logger)
	a.logger.Debug("trash index built", "entries", len(trashSet))

	var exifReader extract.ExifReader
	if exifFallback {
		exifReader = exif.Reader{}
	}

	ex := extract.NewExtractor(
		a.catalog,
		fs.NewOSFilesystemManager(),
		metadata.NewDecoder(a.logger),
		exifReader,
		trashSet,
		&presentation.ProgressPrinter{W: os.Stdout},
		a.logger,
		opts,
	)
	return ex.Run()
}

// Close releases the catalog copy and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.catalog.Close(); err != nil {
		firstErr = fmt.Errorf("closing catalog: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
