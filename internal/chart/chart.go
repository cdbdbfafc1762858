// Package chart renders analyzer results as standalone SVG bar charts.
//
// The report only stores the returned reference; it never reads the file.
package chart

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"tccretro/internal/analyzer"
	"tccretro/internal/fileutil"
	"tccretro/internal/logging"
	"tccretro/internal/services"
	"tccretro/internal/textutil"
)

// Layout constants, in SVG user units.
const (
	barHeight   = 22
	barGap      = 8
	labelWidth  = 220
	plotWidth   = 420
	valueWidth  = 140
	titleHeight = 36
	padding     = 12
	maxLabel    = 28
	// MaxBars limits the categories drawn; the remainder is folded into "other".
	MaxBars = 15
)

// runIDLength bounds the run suffix in chart file names.
const runIDLength = 8

// FileName returns the chart file name for an analyzer. A non-empty runID is
// appended so earlier reports keep pointing at their own charts.
func FileName(runID, analyzerName string) string {
	base := textutil.SanitizeToken(analyzerName) + "_analysis"
	if strings.TrimSpace(runID) != "" {
		id := textutil.SanitizeToken(runID)
		if len(id) > runIDLength {
			id = id[:runIDLength]
		}
		base += "_" + id
	}
	return base + ".svg"
}

// Renderer writes charts into a directory and returns references relative to
// the report location.
type Renderer struct {
	dir    string
	prefix string
	logger *slog.Logger
}

// NewRenderer writes into dir. References are prefix joined with the file
// name, using forward slashes.
func NewRenderer(dir, prefix string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{dir: dir, prefix: prefix, logger: logger}
}

// Render writes the chart for res and returns its reference. The run ID in ctx,
// if any, becomes part of the file name.
func (r *Renderer) Render(ctx context.Context, res analyzer.Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	runID, _ := services.RunIDFromContext(ctx)
	name := FileName(runID, res.Name)
	target := filepath.Join(r.dir, name)
	if err := fileutil.WriteFileAtomic(target, SVG(res), 0o644); err != nil {
		return "", fmt.Errorf("write chart %s: %w", name, err)
	}
	r.logger.Debug("chart written",
		logging.String(logging.FieldAnalyzer, res.Name),
		logging.String("path", target),
	)
	return path.Join(r.prefix, name), nil
}

type bar struct {
	label string
	hours float64
	share float64
}

// SVG renders a horizontal bar chart of actual hours per category.
func SVG(res analyzer.Result) []byte {
	bars := collectBars(res)
	maxHours := 0.0
	for _, b := range bars {
		maxHours = max(maxHours, b.hours)
	}
	width := padding*2 + labelWidth + plotWidth + valueWidth
	height := padding*2 + titleHeight + len(bars)*(barHeight+barGap)
	if len(bars) == 0 {
		height += barHeight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="13">`+"\n", width, height, width, height)
	fmt.Fprintf(&buf, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	title := res.Title
	if title == "" {
		title = res.Name
	}
	fmt.Fprintf(&buf, `<text x="%d" y="%d" font-size="16" font-weight="bold">%s</text>`+"\n", padding, padding+20, escape(title))

	if len(bars) == 0 {
		fmt.Fprintf(&buf, `<text x="%d" y="%d" fill="#666666">no data</text>`+"\n", padding, padding+titleHeight+16)
	}
	for i, b := range bars {
		y := padding + titleHeight + i*(barHeight+barGap)
		w := 0.0
		if maxHours > 0 {
			w = b.hours / maxHours * plotWidth
		}
		fmt.Fprintf(&buf, `<text x="%d" y="%d" text-anchor="end">%s</text>`+"\n",
			padding+labelWidth-8, y+barHeight-6, escape(textutil.Truncate(b.label, maxLabel)))
		fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%.1f" height="%d" fill="%s"/>`+"\n",
			padding+labelWidth, y, w, barHeight, palette[i%len(palette)])
		fmt.Fprintf(&buf, `<text x="%.1f" y="%d">%.2fh (%.1f%%)</text>`+"\n",
			float64(padding+labelWidth)+w+6, y+barHeight-6, b.hours, b.share)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

var palette = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac"}

func collectBars(res analyzer.Result) []bar {
	bars := make([]bar, 0, min(len(res.Categories), MaxBars))
	var other bar
	for i, c := range res.Categories {
		if i >= MaxBars-1 && len(res.Categories) > MaxBars {
			other.hours += c.Actual.Hours()
			other.share += c.Share
			continue
		}
		bars = append(bars, bar{label: c.Label, hours: c.Actual.Hours(), share: c.Share})
	}
	if other.hours > 0 || other.share > 0 {
		other.label = "other"
		bars = append(bars, other)
	}
	return bars
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
