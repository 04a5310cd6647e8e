package statediff

import (
	"fmt"
	"io"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/fatih/color"

	"github.com/conn-castle/pkgctl/internal/messages"
)

const (
	// FormatSummary renders per-section package lines.
	FormatSummary = "summary"
	// FormatUnified renders a unified diff of the package lists.
	FormatUnified = "unified"
	// DefaultMaxLines is the line cap used when RenderOptions.MaxLines is unset.
	DefaultMaxLines = 40
)

// RenderOptions controls Render.
type RenderOptions struct {
	Format   string
	MaxLines int
	Color    bool
}

// Render writes d to w in the requested format, truncated to opts.MaxLines lines.
func Render(w io.Writer, d Diff, opts RenderOptions) error {
	if d.Empty() {
		_, err := fmt.Fprintln(w, messages.StatediffNoChanges)
		return err
	}
	var lines []string
	if opts.Format == FormatUnified {
		lines = unifiedLines(d)
	} else {
		lines = summaryLines(d, opts.Color)
	}
	lines, _ = truncateLines(lines, opts.MaxLines)
	_, err := io.WriteString(w, ensureTrailingNewline(strings.Join(lines, "\n")))
	return err
}

func summaryLines(d Diff, useColor bool) []string {
	header := newColor(useColor, color.Bold)
	up := newColor(useColor, color.FgGreen)
	down := newColor(useColor, color.FgYellow)
	removed := newColor(useColor, color.FgRed)
	added := newColor(useColor, color.FgGreen)

	var lines []string
	if len(d.Upgraded) > 0 {
		lines = append(lines, header.Sprint(messages.StatediffUpgradedHeader))
		for _, c := range d.Upgraded {
			lines = append(lines, up.Sprintf(messages.StatediffChangeFmt, c.To.Key(), c.From.EVR(), c.To.EVR()))
		}
	}
	if len(d.Downgraded) > 0 {
		lines = append(lines, header.Sprint(messages.StatediffDowngradedHeader))
		for _, c := range d.Downgraded {
			lines = append(lines, down.Sprintf(messages.StatediffChangeFmt, c.To.Key(), c.From.EVR(), c.To.EVR()))
		}
	}
	if len(d.Removed) > 0 {
		lines = append(lines, header.Sprint(messages.StatediffRemovedHeader))
		for _, p := range d.Removed {
			lines = append(lines, removed.Sprintf(messages.StatediffPackageFmt, p.String()))
		}
	}
	if len(d.Added) > 0 {
		lines = append(lines, header.Sprint(messages.StatediffAddedHeader))
		for _, p := range d.Added {
			lines = append(lines, added.Sprintf(messages.StatediffPackageFmt, p.String()))
		}
	}
	return lines
}

func unifiedLines(d Diff) []string {
	diff := udiff.Unified(messages.StatediffBootedLabel, messages.StatediffPendingLabel, packageList(d.Prior), packageList(d.Next))
	return splitDiffLines(diff)
}

func packageList(pkgs []Package) string {
	var b strings.Builder
	for _, p := range pkgs {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func truncateLines(lines []string, maxLines int) ([]string, bool) {
	limit := maxLines
	if limit <= 0 {
		limit = DefaultMaxLines
	}
	if len(lines) <= limit {
		return lines, false
	}
	truncated := append([]string(nil), lines[:limit]...)
	truncated = append(truncated, fmt.Sprintf(messages.StatediffTruncatedFmt, limit))
	return truncated, true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" || strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
