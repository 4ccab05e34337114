package ui

import (
	"strings"
)

// SnapshotConfig configures a one-off frame rendering.
type SnapshotConfig struct {
	Width     int
	Height    int
	StartKeys []string
}

// RenderSnapshot replays the start keys, settles the annotation scheduler
// and returns the frame the terminal would show. A height pads the frame.
func RenderSnapshot(m *Model, cfg SnapshotConfig) string {
	m.width, m.height = cfg.Width, cfg.Height
	m.Settle()
	ApplyStartupKeys(m, cfg.StartKeys)
	m.ensureVisible()
	return padSnapshotHeight(m.Render(), cfg.Height, cfg.Width)
}

// RenderText paints the whole settled value without a frame.
func RenderText(m *Model, width int) string {
	m.Settle()
	return Paint(m.doc, m.doc.Body(), m.theme, nil, width).Text()
}

func padSnapshotHeight(view string, height, width int) string {
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if height <= 0 || len(lines) >= height {
		return strings.Join(lines, "\n")
	}
	padLine := " "
	if width > 1 {
		padLine = strings.Repeat(" ", width)
	}
	for len(lines) < height {
		lines = append(lines, padLine)
	}
	return strings.Join(lines, "\n")
}
