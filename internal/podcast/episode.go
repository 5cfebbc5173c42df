package podcast

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"inkcast/internal/config"
	"inkcast/internal/fileutil"
	"inkcast/internal/services/media"
	"inkcast/internal/services/tts"
)

// Overridable for deterministic tests.
var (
	newGUID = uuid.NewString
	now     = time.Now
)

const defaultBitrateKbps = 64

// EpisodeBuilder synthesizes narrated audio for a chapter and writes the
// matching RSS item fragment. Fragments are immutable once written.
type EpisodeBuilder struct {
	cfg   *config.Config
	tts   tts.Client
	media media.Client
}

// NewEpisodeBuilder constructs a builder with real piper and ffmpeg clients.
func NewEpisodeBuilder(cfg *config.Config) *EpisodeBuilder {
	return NewEpisodeBuilderWithDependencies(cfg,
		tts.NewCLI(tts.WithBinary(cfg.Podcast.TTSBinary), tts.WithVoice(cfg.Podcast.TTSVoice)),
		media.NewCLI(media.WithFFmpegBinary(cfg.FFmpegBinary()), media.WithFFprobeBinary(cfg.FFprobeBinary())),
	)
}

// NewEpisodeBuilderWithDependencies allows injecting the audio clients.
func NewEpisodeBuilderWithDependencies(cfg *config.Config, ttsClient tts.Client, mediaClient media.Client) *EpisodeBuilder {
	return &EpisodeBuilder{cfg: cfg, tts: ttsClient, media: mediaClient}
}

// Episode describes the result of a successful build.
type Episode struct {
	Index     int
	AudioPath string
	ItemPath  string
	Duration  time.Duration
}

// Build narrates the rendered chapter at htmlPath into an MP3 episode and
// writes its item fragment. It refuses to rebuild an existing episode.
func (b *EpisodeBuilder) Build(ctx context.Context, channelTitle, episodeTitle string, index int, htmlPath string) (Episode, error) {
	paths := ChannelPaths(b.cfg.Paths.PodcastDir, channelTitle)
	if !fileutil.FileExists(paths.TemplatePath) {
		return Episode{}, fmt.Errorf("podcast: %s is not initialized (missing %s)", channelTitle, paths.TemplatePath)
	}

	itemPath := filepath.Join(paths.ItemsDir, fmt.Sprintf("%04d.xml", index))
	if fileutil.FileExists(itemPath) {
		return Episode{}, fmt.Errorf("podcast: episode %04d already exists: %s", index, itemPath)
	}

	narration, err := narrationText(htmlPath)
	if err != nil {
		return Episode{}, err
	}

	audioPath := filepath.Join(paths.EpisodesDir, fmt.Sprintf("%04d.mp3", index))
	wavPath := filepath.Join(paths.EpisodesDir, fmt.Sprintf(".%04d.wav", index))
	defer os.Remove(wavPath)

	if err := b.tts.Synthesize(ctx, narration, wavPath); err != nil {
		return Episode{}, fmt.Errorf("podcast: synthesize episode %04d: %w", index, err)
	}

	bitrate := b.cfg.Podcast.BitrateKbps
	if bitrate <= 0 {
		bitrate = defaultBitrateKbps
	}
	if err := b.media.TranscodeMP3(ctx, wavPath, audioPath, bitrate); err != nil {
		return Episode{}, fmt.Errorf("podcast: transcode episode %04d: %w", index, err)
	}

	duration, err := b.media.Duration(ctx, audioPath)
	if err != nil {
		return Episode{}, fmt.Errorf("podcast: probe episode %04d: %w", index, err)
	}

	fragment, err := b.itemFragment(channelTitle, episodeTitle, index, audioPath, duration)
	if err != nil {
		return Episode{}, err
	}
	if err := fileutil.WriteFileAtomic(itemPath, fragment, 0o644); err != nil {
		return Episode{}, fmt.Errorf("podcast: write item fragment: %w", err)
	}

	return Episode{Index: index, AudioPath: audioPath, ItemPath: itemPath, Duration: duration}, nil
}

// itemFragment builds a single <item> element for the episode.
func (b *EpisodeBuilder) itemFragment(channelTitle, episodeTitle string, index int, audioPath string, duration time.Duration) ([]byte, error) {
	doc := etree.NewDocument()
	item := doc.CreateElement("item")
	item.CreateElement("title").SetText(episodeTitle)
	item.CreateElement("description").SetText(fmt.Sprintf("%s, %s", channelTitle, episodeTitle))

	guid := item.CreateElement("guid")
	guid.CreateAttr("isPermaLink", "false")
	guid.SetText(newGUID())

	item.CreateElement("pubDate").SetText(now().UTC().Format(time.RFC1123Z))

	enclosure := item.CreateElement("enclosure")
	enclosure.CreateAttr("url", b.audioURL(channelTitle, index))
	if info, err := os.Stat(audioPath); err == nil {
		enclosure.CreateAttr("length", fmt.Sprintf("%d", info.Size()))
	}
	enclosure.CreateAttr("type", "audio/mpeg")

	item.CreateElement("itunes:duration").SetText(formatDuration(duration))

	doc.Indent(2)
	rendered, err := doc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("podcast: render item fragment: %w", err)
	}
	return []byte(rendered), nil
}

func (b *EpisodeBuilder) audioURL(channelTitle string, index int) string {
	base := b.cfg.Podcast.AudioBaseURL
	if base == "" {
		base = b.cfg.Podcast.SiteBaseURL
	}
	return fmt.Sprintf("%s/%s/episodes/%04d.mp3", base, channelTitle, index)
}

func formatDuration(d time.Duration) string {
	seconds := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// narrationText flattens a rendered chapter page into plain narration text,
// one line per paragraph.
func narrationText(htmlPath string) (string, error) {
	raw, err := os.ReadFile(htmlPath)
	if err != nil {
		return "", fmt.Errorf("podcast: read rendered chapter: %w", err)
	}
	text := stripTags(string(raw))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("podcast: %s has no narratable text", htmlPath)
	}
	return text, nil
}

// stripTags removes markup and collapses the result to non-blank lines.
// Rendered chapters keep one paragraph per line, which this preserves.
func stripTags(markup string) string {
	var builder strings.Builder
	inTag := false
	for _, r := range markup {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			builder.WriteRune(r)
		}
	}

	var lines []string
	for _, line := range strings.Split(builder.String(), "\n") {
		line = strings.TrimSpace(html.UnescapeString(line))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
