package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"inkcast/internal/chapter"
	"inkcast/internal/config"
	"inkcast/internal/logging"
	"inkcast/internal/queue"
	"inkcast/internal/workflow"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <chapter.json>",
		Short: "Translate and publish a single uploaded chapter",
		Long: "Runs one chapter through the whole pipeline in the foreground. The file\n" +
			"name must follow the <source>-<bookid>-<index>.json pattern.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := chapter.ParseFilename(filepath.Base(path)); err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return err
				}

				item, err := store.FindBySourcePath(cmd.Context(), path)
				if err != nil {
					return err
				}
				if item == nil {
					identity, err := chapter.ParseFilename(filepath.Base(path))
					if err != nil {
						return err
					}
					item, err = store.NewChapter(cmd.Context(), path, identity.Source, identity.BookID, identity.Index)
					if err != nil {
						return err
					}
				} else if item.Status == queue.StatusFailed {
					if _, err := store.RetryFailed(cmd.Context(), item.ID); err != nil {
						return err
					}
				}

				manager, err := workflow.NewManager(cfg, store, logger)
				if err != nil {
					return err
				}
				result, err := manager.ProcessChapter(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				if result.Status == queue.StatusFailed {
					return fmt.Errorf("chapter failed: %s", result.ErrorMessage)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Chapter published: %s\n", result.OutputPath)
				return nil
			})
		},
	}
}
