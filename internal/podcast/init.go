package podcast

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"inkcast/internal/fileutil"
)

// ItemsPlaceholder marks where episode item fragments are spliced into the
// channel feed. It must appear exactly once in the channel template.
const ItemsPlaceholder = "<!-- ITEMS -->"

const (
	episodesDirName = "episodes"
	itemsDirName    = "rss_items"
	feedFileName    = "rss.xml"
	// The pristine channel template survives feed rebuilds.
	templateFileName = "rss.xml.in"
)

// Channel describes a podcast channel to initialize.
type Channel struct {
	Title       string
	Description string
	Link        string
	Language    string
	Author      string
}

// Paths resolves the filesystem layout of one podcast below root.
type Paths struct {
	Dir          string
	EpisodesDir  string
	ItemsDir     string
	FeedPath     string
	TemplatePath string
}

// ChannelPaths returns the layout for a podcast named title below root.
func ChannelPaths(root, title string) Paths {
	dir := filepath.Join(root, title)
	return Paths{
		Dir:          dir,
		EpisodesDir:  filepath.Join(dir, episodesDirName),
		ItemsDir:     filepath.Join(dir, itemsDirName),
		FeedPath:     filepath.Join(dir, feedFileName),
		TemplatePath: filepath.Join(dir, templateFileName),
	}
}

// Init creates the directory layout and channel feed for a new podcast. It
// refuses to clobber an existing channel.
func Init(root string, channel Channel) (Paths, error) {
	title := strings.TrimSpace(channel.Title)
	if title == "" {
		return Paths{}, fmt.Errorf("podcast: channel title required")
	}

	paths := ChannelPaths(root, title)
	if fileutil.FileExists(paths.FeedPath) {
		return Paths{}, fmt.Errorf("podcast: %s already initialized (found %s)", title, paths.FeedPath)
	}

	for _, dir := range []string{paths.EpisodesDir, paths.ItemsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, fmt.Errorf("podcast: create %s: %w", dir, err)
		}
	}

	feed, err := channelTemplate(channel)
	if err != nil {
		return Paths{}, err
	}
	if err := fileutil.WriteFileAtomic(paths.TemplatePath, feed, 0o644); err != nil {
		return Paths{}, fmt.Errorf("podcast: write channel template: %w", err)
	}
	if err := fileutil.WriteFileAtomic(paths.FeedPath, feed, 0o644); err != nil {
		return Paths{}, fmt.Errorf("podcast: write feed: %w", err)
	}
	return paths, nil
}

// channelTemplate builds the channel skeleton with the items placeholder in
// place of episode entries.
func channelTemplate(channel Channel) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")
	rss.CreateAttr("xmlns:itunes", "http://www.itunes.com/dtds/podcast-1.0.dtd")

	ch := rss.CreateElement("channel")
	ch.CreateElement("title").SetText(channel.Title)
	ch.CreateElement("description").SetText(channel.Description)
	if channel.Link != "" {
		ch.CreateElement("link").SetText(channel.Link)
	}
	if channel.Language != "" {
		ch.CreateElement("language").SetText(channel.Language)
	}
	if channel.Author != "" {
		ch.CreateElement("itunes:author").SetText(channel.Author)
	}
	ch.CreateComment(" ITEMS ")

	doc.Indent(2)
	rendered, err := doc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("podcast: render channel template: %w", err)
	}
	if strings.Count(rendered, ItemsPlaceholder) != 1 {
		return nil, fmt.Errorf("podcast: channel template must contain the items placeholder exactly once")
	}
	return []byte(rendered), nil
}
