package mural

import (
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// frameStats holds per-frame metrics. Only populated when Canvas debug mode
// is on.
type frameStats struct {
	visibleNodes   int
	edges          int
	mountedWidgets int
	drawTime       time.Duration
}

// logStats prints frame metrics to stderr.
func (c *Canvas) logStats() {
	_, _ = fmt.Fprintf(os.Stderr,
		"[mural] visible: %d | edges: %d | widgets: %d | indexed: %d | draw: %v\n",
		c.stats.visibleNodes, c.stats.edges, c.stats.mountedWidgets,
		c.index.Len(), c.stats.drawTime)
}

// drawStatsOverlay prints metrics into the screen corner.
func (c *Canvas) drawStatsOverlay(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f\nvisible: %d / %d\nzoom: %.2f",
		ebiten.ActualFPS(), c.stats.visibleNodes, c.index.Len(), c.viewport.Zoom))
}
