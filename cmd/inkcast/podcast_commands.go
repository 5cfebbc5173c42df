package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"inkcast/internal/config"
	"inkcast/internal/logging"
	"inkcast/internal/podcast"
	"inkcast/internal/render"
)

func newPodcastCommand(ctx *commandContext) *cobra.Command {
	podcastCmd := &cobra.Command{
		Use:   "podcast",
		Short: "Manage podcast channels built from translated chapters",
	}

	podcastCmd.AddCommand(newPodcastInitCommand(ctx))
	podcastCmd.AddCommand(newPodcastEpisodeCommand(ctx))
	podcastCmd.AddCommand(newPodcastRSSCommand(ctx))

	return podcastCmd
}

func newPodcastInitCommand(ctx *commandContext) *cobra.Command {
	var description string
	var link string

	cmd := &cobra.Command{
		Use:   "init <title> [description]",
		Short: "Create the directory layout and feed for a new channel",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if len(args) > 1 && description == "" {
				description = args[1]
			}
			channelLink := link
			if channelLink == "" {
				channelLink = cfg.Podcast.SiteBaseURL
			}
			paths, err := podcast.Init(cfg.Paths.PodcastDir, podcast.Channel{
				Title:       args[0],
				Description: description,
				Link:        channelLink,
				Language:    cfg.Podcast.Language,
				Author:      cfg.Podcast.Author,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized podcast at %s\n", paths.Dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Channel description")
	cmd.Flags().StringVar(&link, "link", "", "Channel link (defaults to podcast.site_base_url)")
	return cmd
}

func newPodcastEpisodeCommand(ctx *commandContext) *cobra.Command {
	var episodeTitle string

	cmd := &cobra.Command{
		Use:   "episode <channel> <chapter-index>",
		Short: "Narrate a rendered chapter into an MP3 episode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return fmt.Errorf("invalid chapter index %q", args[1])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			channel := args[0]
			htmlPath := filepath.Join(cfg.Paths.LibraryDir, render.BookDir(channel), fmt.Sprintf("%04d.html", index))
			title := episodeTitle
			if title == "" {
				title = fmt.Sprintf("Chapter %d", index)
			}

			builder := podcast.NewEpisodeBuilder(cfg)
			episode, err := builder.Build(cmd.Context(), channel, title, index, htmlPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Episode %04d written: %s (%s)\n",
				episode.Index, episode.AudioPath, episode.Duration)
			fmt.Fprintln(cmd.OutOrStdout(), "Run 'inkcast podcast rss' to include it in the feed.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&episodeTitle, "title", "t", "", "Episode title (defaults to \"Chapter <index>\")")
	return cmd
}

func newPodcastRSSCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rss <channel>",
		Short: "Rebuild the channel feed from its episode fragments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := buildCLILogger(cfg)
			if err != nil {
				return err
			}
			count, err := podcast.BuildFeed(cfg.Paths.PodcastDir, args[0], logger)
			if err != nil {
				return err
			}

			paths := podcast.ChannelPaths(cfg.Paths.PodcastDir, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Feed rebuilt with %d episodes: %s\n", count, paths.FeedPath)
			return nil
		},
	}
}

func buildCLILogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.NewFromConfig(cfg)
}
