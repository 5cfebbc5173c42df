package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"inkcast/internal/fileutil"
)

//go:embed templates/default.html
var defaultTemplateFS embed.FS

// Page is the data handed to chapter templates.
type Page struct {
	Book      string
	Title     string
	Source    string
	URL       string
	Content   template.HTML
	Index     string
	NextIndex string
}

// Input describes one chapter to render.
type Input struct {
	Book         string
	BookID       string
	Source       string
	ChapterTitle string
	ChapterIndex int
	URL          string
	Translated   string
}

// Renderer turns translated chapter text into HTML files in the library.
type Renderer struct {
	templateDir string
	libraryDir  string
}

// NewRenderer constructs a Renderer writing below libraryDir.
func NewRenderer(templateDir, libraryDir string) *Renderer {
	return &Renderer{templateDir: templateDir, libraryDir: libraryDir}
}

// Render writes the chapter HTML and returns its path. Output lands at
// <library>/<book slug>/<index %04d>.html via a temp-file rename, so a crash
// never leaves a half-written page.
func (r *Renderer) Render(input Input) (string, error) {
	if strings.TrimSpace(input.Book) == "" {
		return "", fmt.Errorf("render: book title required")
	}
	if strings.TrimSpace(input.Translated) == "" {
		return "", fmt.Errorf("render: translated content required")
	}

	tmpl, err := r.lookupTemplate(input.Source, input.BookID)
	if err != nil {
		return "", err
	}

	page := Page{
		Book:      input.Book,
		Title:     input.ChapterTitle,
		Source:    input.Source,
		URL:       input.URL,
		Content:   Paragraphs(input.Translated),
		Index:     fmt.Sprintf("%04d", input.ChapterIndex),
		NextIndex: fmt.Sprintf("%04d", input.ChapterIndex+1),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("render: execute template: %w", err)
	}

	outputPath := filepath.Join(r.libraryDir, BookDir(input.Book), page.Index+".html")
	if err := fileutil.WriteFileAtomic(outputPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("render: write output: %w", err)
	}
	return outputPath, nil
}

// BookDir returns the library directory name for a book title.
func BookDir(book string) string {
	return slug.Make(book)
}

// Paragraphs wraps each non-blank line of text in a <p> element. Lines are
// already translated HTML-safe text; escaping happens here.
func Paragraphs(text string) template.HTML {
	var builder strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("<p>")
		builder.WriteString(template.HTMLEscapeString(line))
		builder.WriteString("</p>\n")
	}
	return template.HTML(builder.String())
}

// lookupTemplate resolves the chapter template: a book-specific file, then a
// source-wide file, then the embedded default.
func (r *Renderer) lookupTemplate(source, bookID string) (*template.Template, error) {
	if r.templateDir != "" && source != "" {
		candidates := []string{}
		if bookID != "" {
			candidates = append(candidates, filepath.Join(r.templateDir, source+"-"+bookID+".html"))
		}
		candidates = append(candidates, filepath.Join(r.templateDir, source+".html"))
		for _, candidate := range candidates {
			if !fileutil.FileExists(candidate) {
				continue
			}
			data, err := os.ReadFile(candidate)
			if err != nil {
				return nil, fmt.Errorf("render: read template %s: %w", candidate, err)
			}
			tmpl, err := template.New(filepath.Base(candidate)).Parse(string(data))
			if err != nil {
				return nil, fmt.Errorf("render: parse template %s: %w", candidate, err)
			}
			return tmpl, nil
		}
	}

	tmpl, err := template.ParseFS(defaultTemplateFS, "templates/default.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse default template: %w", err)
	}
	return tmpl, nil
}
