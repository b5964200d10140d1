package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ugbmonitor/internal/config"
	"ugbmonitor/internal/dataprocessing"
	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/exporter"
	"ugbmonitor/internal/files"
	"ugbmonitor/internal/infrastructure"
	"ugbmonitor/internal/services"
	"ugbmonitor/internal/storage"
	"ugbmonitor/internal/validation"
)

type options struct {
	configFile string
	baseDir    string
	dryRun     bool
	merge      bool
	dedupe     bool
	export     string
}

// env is what every subcommand needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
	store  *storage.Manager
	files  *validation.FileValidator
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
	infrastructure.CloseLogFile()
}

// newRootCmd builds the command tree. A nil logger means the logger is
// built from configuration and writes to the log file only.
func newRootCmd(logger *slog.Logger) *cobra.Command {
	opts := &options{}
	e := &env{}

	root := &cobra.Command{
		Use:   "ugb-ingest [workbook.xlsx | directory]",
		Short: "Ingest a UGB cabinet workbook into the master dataset",
		Long: `ugb-ingest reads a UGB recap workbook, normalizes every valid sheet and
writes the result to the configured store. Given a directory, the most
recently modified workbook in it is ingested.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd, opts, logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ingest(cmd.Context(), e, args[0], opts, cmd.OutOrStdout())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file (default: config.yaml in the working directory)")
	pf.StringVar(&opts.baseDir, "base-dir", "", "base directory for data, logs and backups")

	f := root.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "process the workbook without writing the store")
	f.BoolVar(&opts.merge, "merge", false, "merge with the stored rows instead of replacing them")
	f.BoolVar(&opts.dedupe, "dedupe", false, "drop duplicate cabinets by key when merging")
	f.StringVar(&opts.export, "export", "", "also write the resulting dataset as an Excel workbook to this file or directory")

	root.AddCommand(newBackupsCmd(e))
	return root
}

func newBackupsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List backups of the local store, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listBackups(e, cmd.OutOrStdout())
		},
	}
}

func (e *env) setup(cmd *cobra.Command, opts *options, logger *slog.Logger) error {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.baseDir != "" {
		cfg.Paths.BaseDir = opts.baseDir
	}
	if cmd.Flags().Changed("merge") {
		cfg.Storage.ReplaceOnUpload = !opts.merge
	}
	if cmd.Flags().Changed("dedupe") {
		cfg.Storage.DedupeOnMerge = opts.dedupe
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	if logger == nil {
		cfg.Logging.Output = "file"
		cfg.Logging.FilePath = paths.LogFile
		if logger, err = infrastructure.InitializeLogger(cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	logger = logger.With(slog.String("component", "ugb-ingest"))

	store, err := storage.NewFromConfig(cmd.Context(), cfg, paths, logger, nil)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	*e = env{
		cfg:    cfg,
		paths:  paths,
		logger: logger,
		store:  store,
		files:  validation.NewFileValidator(logger, cfg.Upload),
	}
	return nil
}

// resolveInput returns target itself, or the newest workbook when target
// is a directory.
func resolveInput(target string) (string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("input not found: %w", err)
	}
	if !info.IsDir() {
		return target, nil
	}
	found, err := files.FindWorkbooks(target)
	if err != nil {
		return "", err
	}
	latest, ok := files.GetLatestFile(found)
	if !ok {
		return "", fmt.Errorf("no workbook found in %s", target)
	}
	return latest.Path, nil
}

func ingest(ctx context.Context, e *env, target string, opts *options, out io.Writer) error {
	path, err := resolveInput(target)
	if err != nil {
		return err
	}
	if err := e.files.ValidateWorkbookFile(path); err != nil {
		return err
	}
	e.logger.InfoContext(ctx, "Ingest started", slog.String("file", path), slog.Bool("dry_run", opts.dryRun))
	fmt.Fprintf(out, "Workbook: %s\n", path)

	processor := dataprocessing.NewProcessor(e.logger)
	res := processor.ProcessFile(ctx, path, func(percent int, message string) {
		fmt.Fprintf(out, "[%3d%%] %s\n", percent, message)
	})
	if !res.Success {
		fmt.Fprintf(out, "Rejected: %s\n", res.Message)
		return res.Err
	}
	fmt.Fprintf(out, "Read %d rows from %d sheets\n", res.Rows(), res.SheetCount)

	result := res.Table
	if opts.dryRun {
		fmt.Fprintln(out, "Dry run: store not written")
	} else {
		report, err := e.store.Save(ctx, res.Table)
		if err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
		fmt.Fprintf(out, "Saved %d rows to %s store\n", report.Rows, report.Backend)
		if report.BackupPath != "" {
			fmt.Fprintf(out, "Backup: %s\n", report.BackupPath)
		}
		if report.BackupErr != nil {
			fmt.Fprintf(out, "Warning: %s\n", dataprocessing.Message(report.BackupErr))
		}
		if result, err = e.store.Load(ctx); err != nil {
			return fmt.Errorf("reload failed: %w", err)
		}
	}

	fmt.Fprintf(out, "[%3d%%] %s\n", services.ProgressDone, "Selesai")

	if opts.export != "" {
		dst, err := exportWorkbook(e.files, opts.export, result, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported: %s\n", dst)
	}

	e.logger.InfoContext(ctx, "Ingest finished",
		slog.String("file", path),
		slog.Int("rows", result.Len()))
	return nil
}

// exportWorkbook writes t to dst. A directory destination receives a
// timestamped file name.
func exportWorkbook(v *validation.FileValidator, dst string, t *dataset.Table, at time.Time) (string, error) {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		dst = filepath.Join(dst, exporter.FileName(at))
	}
	if err := v.ValidateOutputDirectory(filepath.Dir(dst)); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create export: %w", err)
	}
	if err := exporter.WriteWorkbook(f, t); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return dst, f.Close()
}

func listBackups(e *env, out io.Writer) error {
	if e.cfg.Storage.Backend != "local" {
		return fmt.Errorf("backups are only kept for the local store, current backend is %q", e.cfg.Storage.Backend)
	}
	backups, err := files.FindBackups(e.paths.BackupDir, e.paths.DatabaseFile)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintln(out, "No backups")
		return nil
	}
	for _, b := range backups {
		fmt.Fprintf(out, "%s\t%d\t%s\n", b.ModTime.Format(time.RFC3339), b.Size, b.Path)
	}
	return nil
}
