// Package daemonrun hosts the daemon runtime loop shared by the inkcast CLI
// and the inkcastd binary: it takes the single-instance lock, opens the queue,
// and runs the workflow manager until the process is signalled.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	"inkcast/internal/config"
	"inkcast/internal/logging"
	"inkcast/internal/queue"
	"inkcast/internal/workflow"
)

// Run starts the inkcast daemon loop. It blocks until ctx is cancelled or the
// process receives SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	// One daemon per queue database.
	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "inkcast.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another inkcast daemon is already running (lock %s)", lock.Path())
	}
	defer lock.Unlock() //nolint:errcheck

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "inkcast.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	logDependencySnapshot(logger, cfg)

	manager, err := workflow.NewManager(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("build workflow: %w", err)
	}
	if err := manager.Start(signalCtx); err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}

	logger.Info("daemon started",
		logging.String("inbox", cfg.Paths.InboxDir),
		logging.String("library", cfg.Paths.LibraryDir),
	)

	<-signalCtx.Done()
	logger.Info("daemon shutting down")
	manager.Stop()
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("llm_token_present", strings.TrimSpace(cfg.LLM.Token) != ""),
		logging.String("llm_provider", cfg.LLM.Provider),
		logging.Bool("git_available", binaryAvailable(cfg.GitBinary())),
		logging.Bool("tts_available", binaryAvailable(cfg.Podcast.TTSBinary)),
		logging.Bool("ffmpeg_available", binaryAvailable(cfg.FFmpegBinary())),
		logging.Bool("ffprobe_available", binaryAvailable(cfg.FFprobeBinary())),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
