package sim

import (
	"fmt"

	"github.com/vovakirdan/dinobot/internal/core"
)

// Visual characters for rendering
const (
	DinoChar   = '█'
	CactusChar = '▓'
	BirdChar   = 'v'
	GroundChar = '═'
	ProbeChar  = '+'
)

// Render draws a downscaled view of the page into dst, marking the
// sensor's lane probes.
func (g *Game) Render(dst *core.Screen) {
	g.mu.Lock()
	defer g.mu.Unlock()

	dst.Clear()
	if dst.Width() == 0 || dst.Height() == 0 {
		return
	}
	sx := float64(dst.Width()) / float64(g.cfg.Width)
	sy := float64(dst.Height()) / float64(g.cfg.Height)

	ground := core.NewRect(0, g.cfg.GroundY, g.cfg.Width, groundThickness).Scale(sx, sy)
	dst.DrawHLine(0, ground.Y, dst.Width(), GroundChar, core.ColorGray)

	for _, o := range g.obstacles.Obstacles() {
		if o.Kind == Bird {
			dst.DrawRect(o.Rect().Scale(sx, sy), BirdChar, core.ColorRed)
		} else {
			dst.DrawRect(o.Rect().Scale(sx, sy), CactusChar, core.ColorGray)
		}
	}

	player := g.playerRect().Scale(sx, sy)
	color := core.ColorGreen
	if g.gameOver {
		color = core.ColorBrightRed
	}
	dst.DrawRect(player, DinoChar, color)

	for _, y := range []int{g.layout.LowLaneY, g.layout.HighLaneY} {
		p := core.NewRect(g.layout.ObstacleX, y, 1, 1).Scale(sx, sy)
		if dst.Get(p.X, p.Y) == ' ' {
			dst.SetColored(p.X, p.Y, ProbeChar, core.ColorYellow)
		}
	}

	dst.DrawText(1, 0, fmt.Sprintf(" Score: %d ", g.score))
	speed := fmt.Sprintf(" Spd: %.1f ", g.difficulty.Speed(g.cfg.Physics.BaseSpeed, g.score, g.frames))
	dst.DrawText(dst.Width()-len(speed)-1, 0, speed)

	if g.gameOver {
		banner := g.banner.Scale(sx, sy)
		dst.DrawRect(banner, ' ', core.ColorDefault)
		const msg = "GAME OVER"
		dst.DrawText(banner.X+(banner.W-len(msg))/2, banner.Y, msg)
	}
}
