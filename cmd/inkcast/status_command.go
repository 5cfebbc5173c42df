package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"inkcast/internal/config"
	"inkcast/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Configuration", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, ctx.configPath, colorize))
				fmt.Fprintln(out, renderStatusLine("LLM provider", statusInfo, cfg.LLM.Provider, colorize))
				tokenKind := statusOK
				if strings.TrimSpace(cfg.LLM.Token) == "" {
					tokenKind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("LLM token", tokenKind, yesNo(cfg.LLM.Token != ""), colorize))
				publishKind := statusInfo
				if cfg.Publish.Enabled {
					publishKind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine("Publishing", publishKind, yesNo(cfg.Publish.Enabled), colorize))

				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(out, line)
				}
				pid, running := daemonPID(cfg)
				if running {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", pid), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not running", colorize))
				}

				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Queue", colorize) {
					fmt.Fprintln(out, line)
				}
				health, err := store.Summary(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderStatusLine("Total", statusInfo, strconv.Itoa(health.Total), colorize))
				fmt.Fprintln(out, renderStatusLine("Pending", statusInfo, strconv.Itoa(health.Pending), colorize))
				fmt.Fprintln(out, renderStatusLine("Processing", statusInfo, strconv.Itoa(health.Processing), colorize))
				failedKind := statusOK
				if health.Failed > 0 {
					failedKind = statusError
				}
				fmt.Fprintln(out, renderStatusLine("Failed", failedKind, strconv.Itoa(health.Failed), colorize))
				fmt.Fprintln(out, renderStatusLine("Completed", statusOK, strconv.Itoa(health.Completed), colorize))
				return nil
			})
		},
	}
}

// daemonPID reports the pid recorded by a running daemon, if any.
func daemonPID(cfg *config.Config) (int, bool) {
	raw, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "inkcast.pid"))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return 0, false
	}
	return pid, true
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
