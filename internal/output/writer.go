// Package output serializes finalized reports to the output directory.
package output

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"tccretro/internal/fileutil"
	"tccretro/internal/logging"
	"tccretro/internal/report"
)

// Supported formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

const (
	lockFileName   = ".tccretro.lock"
	fileTimeLayout = "20060102_150405"
	lockRetryDelay = 100 * time.Millisecond
)

// Writer places reports in a directory, one file per run.
type Writer struct {
	dir    string
	format string
	md     goldmark.Markdown
	logger *slog.Logger
}

// NewWriter validates the format and returns a writer rooted at dir.
func NewWriter(dir, format string, logger *slog.Logger) (*Writer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || format == "md" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatHTML {
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{
		dir:    dir,
		format: format,
		// Raw HTML from labels or feedback text is omitted, not passed through.
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger: logger,
	}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// FileName returns the report file name for a generation time.
func (w *Writer) FileName(generated time.Time) string {
	ext := ".md"
	if w.format == FormatHTML {
		ext = ".html"
	}
	return "report_" + generated.Format(fileTimeLayout) + ext
}

// Write serializes r and returns the written path. The output directory is
// locked for the duration of the write so concurrent runs cannot clobber
// each other's files.
func (w *Writer) Write(ctx context.Context, r report.Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	body, err := w.Render(r)
	if err != nil {
		return "", err
	}

	lock := flock.New(filepath.Join(w.dir, lockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("lock output dir: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("lock output dir: %s is busy", w.dir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	generated := r.Metadata.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	target := fileutil.UniquePath(filepath.Join(w.dir, w.FileName(generated)))
	if err := fileutil.WriteFileAtomic(target, body, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	w.logger.Info("report written",
		logging.String(logging.FieldEventType, "report_written"),
		logging.String("path", target),
		logging.String("format", w.format),
		logging.Int("bytes", len(body)),
	)
	return target, nil
}

// Render returns the serialized report without touching the filesystem.
func (w *Writer) Render(r report.Report) ([]byte, error) {
	md := r.Markdown()
	if w.format == FormatMarkdown {
		return []byte(md), nil
	}
	var content bytes.Buffer
	if err := w.md.Convert([]byte(md), &content); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: r.Metadata.Title,
		Body:  template.HTML(content.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("render html page: %w", err)
	}
	return page.Bytes(), nil
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; line-height: 1.5; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
blockquote { color: #555; border-left: 4px solid #ddd; margin-left: 0; padding-left: 1em; }
img { max-width: 100%; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))
