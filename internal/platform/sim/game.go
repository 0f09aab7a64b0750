// Package sim implements a simulated dino-runner page: an endless runner
// drawn in page pixels at the same coordinates as the browser game, so the
// sensor and agent can train headless and deterministically.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/core"
)

// Page colours.
var (
	BackgroundColor = core.RGB{R: 247, G: 247, B: 247}
	InkColor        = core.RGB{R: 83, G: 83, B: 83} // Dino, cacti and ground
	BirdColor       = core.RGB{R: 220, G: 50, B: 50}
)

const groundThickness = 2

// ErrOutOfBounds is returned when a pixel outside the page is read.
var ErrOutOfBounds = errors.New("sim: pixel out of bounds")

// Game is the simulated page. It implements platform.Device.
// All methods are safe for concurrent use.
type Game struct {
	mu sync.Mutex

	cfg        config.SimConfig
	layout     config.Layout
	gray       core.RGB // Game-over banner colour
	banner     core.Rect
	seed       int64
	difficulty *config.DifficultyManager
	obstacles  *ObstacleManager

	playerY   float64 // Offset from the ground (negative = up)
	playerVel float64
	grounded  bool
	duckTimer int // Frames left of the current duck
	score     int
	frames    int
	gameOver  bool
	games     int
}

// New creates a simulated page from the configuration. The page uses the
// layout of cfg.ForSim.
func New(cfg config.Config) *Game {
	cfg = cfg.ForSim()
	g := &Game{
		cfg:    cfg.Sim,
		layout: cfg.Layout,
		gray:   core.Gray(uint8(cfg.Sensor.GameOverGray)),
		banner: bannerRect(cfg.Layout.GameOverProbes),
		seed:   cfg.Sim.Seed,
	}
	g.difficulty = config.NewDifficultyManager(g.cfg.Difficulty)
	g.obstacles = NewObstacleManager(g.seed, &g.cfg, g.difficulty)
	g.reset()
	return g
}

// bannerRect covers all game-over probes with a margin.
func bannerRect(probes []core.Point) core.Rect {
	if len(probes) == 0 {
		return core.Rect{}
	}
	minX, maxX := probes[0].X, probes[0].X
	minY, maxY := probes[0].Y, probes[0].Y
	for _, p := range probes[1:] {
		minX, maxX = core.Min(minX, p.X), core.Max(maxX, p.X)
		minY, maxY = core.Min(minY, p.Y), core.Max(maxY, p.Y)
	}
	const margin = 10
	return core.NewRect(minX-margin, minY-margin, maxX-minX+2*margin+1, maxY-minY+2*margin+1)
}

// reset starts a new game. Each game gets its own derived seed.
func (g *Game) reset() {
	g.obstacles.Reset(g.seed + int64(g.games))
	g.playerY = 0
	g.playerVel = 0
	g.grounded = true
	g.duckTimer = 0
	g.score = 0
	g.frames = 0
	g.gameOver = false
}

// Step advances the page by one frame.
func (g *Game) Step() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.step()
}

// StepFrames advances the page by n frames.
func (g *Game) StepFrames(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := 0; i < n; i++ {
		g.step()
	}
}

func (g *Game) step() {
	if g.gameOver {
		return
	}
	g.frames++

	if !g.grounded {
		g.playerVel += g.cfg.Physics.Gravity
		if g.duckTimer > 0 {
			g.playerVel += g.cfg.Physics.FastFall
		}
		if g.playerVel > g.cfg.Physics.MaxFallSpeed {
			g.playerVel = g.cfg.Physics.MaxFallSpeed
		}
		g.playerY += g.playerVel

		// Landed
		if g.playerY >= 0 {
			g.playerY = 0
			g.playerVel = 0
			g.grounded = true
		}
	}
	if g.duckTimer > 0 {
		g.duckTimer--
	}

	g.obstacles.Update(g.score, g.frames)
	g.score++

	if g.obstacles.CheckCollision(g.playerRect()) {
		g.gameOver = true
		g.games++
	}
}

func (g *Game) ducking() bool {
	return g.grounded && g.duckTimer > 0
}

// playerRect returns the dino's page rectangle.
func (g *Game) playerRect() core.Rect {
	w, h := g.cfg.Player.Width, g.cfg.Player.Height
	if g.ducking() {
		w, h = g.cfg.Player.DuckWidth, g.cfg.Player.DuckHeight
	}
	top := g.cfg.GroundY - h + int(g.playerY)
	return core.NewRect(g.layout.PlayerX, top, w, h)
}

// PlayerRect returns the dino's page rectangle.
func (g *Game) PlayerRect() core.Rect {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerRect()
}

// Obstacles returns a copy of the obstacles on the page.
func (g *Game) Obstacles() []Obstacle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Obstacle(nil), g.obstacles.Obstacles()...)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return core.GameState{
		Score:    g.score,
		GameOver: g.gameOver,
		Airborne: !g.grounded,
		Ducking:  g.ducking(),
		Games:    g.games,
	}
}

// Speed returns the current scroll speed in pixels per frame.
func (g *Game) Speed() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.difficulty.Speed(g.cfg.Physics.BaseSpeed, g.score, g.frames)
}

// ReadPixel returns the colour of page pixel (x, y).
func (g *Game) ReadPixel(x, y int) (core.RGB, error) {
	if x < 0 || y < 0 || x >= g.cfg.Width || y >= g.cfg.Height {
		return core.RGB{}, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gameOver && g.banner.Contains(x, y) {
		return g.gray, nil
	}
	if g.playerRect().Contains(x, y) {
		return InkColor, nil
	}
	if o, ok := g.obstacles.At(x, y); ok {
		return o.Color(), nil
	}
	if y >= g.cfg.GroundY && y < g.cfg.GroundY+groundThickness {
		return InkColor, nil
	}
	return BackgroundColor, nil
}

// PressKey handles a key going down. Space jumps, or restarts after a
// game over. Down ducks for duck_frames, or fast-falls while airborne.
func (g *Game) PressKey(key core.Key) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch key {
	case core.KeySpace, core.KeyUp:
		if g.gameOver {
			g.reset()
			return nil
		}
		if g.grounded {
			g.playerVel = g.cfg.Physics.JumpImpulse
			g.grounded = false
			g.duckTimer = 0
		}
	case core.KeyDown:
		if !g.gameOver {
			g.duckTimer = g.cfg.DuckFrames
		}
	default:
		return fmt.Errorf("sim: unsupported key %s", key)
	}
	return nil
}

// ReleaseKey handles a key going up. Taps are latched on press, so
// releases only validate the key.
func (g *Game) ReleaseKey(key core.Key) error {
	switch key {
	case core.KeySpace, core.KeyUp, core.KeyDown:
		return nil
	default:
		return fmt.Errorf("sim: unsupported key %s", key)
	}
}

// Close implements platform.Device.
func (g *Game) Close() error {
	return nil
}
