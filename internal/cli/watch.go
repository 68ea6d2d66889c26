package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jomohunter/DueDil/internal/formatter"
	"github.com/jomohunter/DueDil/internal/logger"
	"github.com/jomohunter/DueDil/internal/pipeline"
)

var watchSettle time.Duration

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch the upload directory and process new documents",
		Long: `Monitor a directory for new documents and run the pipeline on each
one as it arrives.

Uses file system notifications to detect uploads. A short settle delay
lets slow writers finish before processing starts. Press Ctrl+C to
stop watching.

Examples:
  duedil watch
  duedil watch ./uploads
  duedil watch --settle 5s ./incoming`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&watchSettle, "settle", 2*time.Second, "delay after last write before processing")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	dir := cfg.Storage.UploadDir
	if len(args) == 1 {
		dir = args[0]
	}
	if err := validateWatchDir(dir); err != nil {
		return fmt.Errorf("invalid watch directory: %w", err)
	}

	provider, err := createProvider(&cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer func() {
		if err := provider.Close(); err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close provider: %v\n", err)
		}
	}()

	log := logger.NewWithCallback("cli", isVerbose)
	p := pipeline.New(cfg, provider, log)

	fmtr, err := formatter.New(getOutputFormat(), colorEnabled())
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer cleanupWatcher(watcher)

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	fmt.Fprintln(os.Stderr, styled(headingStyle, fmt.Sprintf("Watching %s for new documents. Press Ctrl+C to stop...", dir)))

	return runWatchLoop(cmd.Context(), watcher, p, fmtr)
}

// runWatchLoop runs the main watch loop with signal handling. Pending
// files are processed once no write has touched them for the settle
// window.
func runWatchLoop(parent context.Context, watcher *fsnotify.Watcher, p *pipeline.Pipeline, fmtr formatter.Formatter) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-signals:
			fmt.Fprintf(os.Stderr, "\nStopping...\n")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !p.Supports(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case <-ticker.C:
			for path, last := range pending {
				if time.Since(last) < watchSettle {
					continue
				}
				delete(pending, path)
				processWatchedFile(ctx, p, fmtr, path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if isVerbose() {
				fmt.Fprintln(os.Stderr, styled(warnStyle, fmt.Sprintf("Watcher error: %v", err)))
			}
		}
	}
}

// processWatchedFile runs the pipeline on one uploaded file. Failures
// are reported and the watch continues.
func processWatchedFile(ctx context.Context, p *pipeline.Pipeline, fmtr formatter.Formatter, path string) {
	fmt.Fprintf(os.Stderr, "Processing %s...\n", filepath.Base(path))

	result, err := p.ProcessFile(ctx, path)
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(errorStyle, fmt.Sprintf("Failed to process %s: %v", path, err)))
		return
	}
	fmt.Fprintln(os.Stderr, styled(successStyle, fmt.Sprintf("Processed %s in %s", filepath.Base(path), result.Duration)))

	report, err := fmtr.Format(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to format report for %s: %v\n", path, err)
		return
	}
	fmt.Println(string(report))
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// validateWatchDir validates that a directory is safe to watch
func validateWatchDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty directory path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}

	return nil
}
