package sim

import (
	"math/rand"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/core"
)

// ObstacleKind distinguishes ground and flying obstacles.
type ObstacleKind int

const (
	Cactus ObstacleKind = iota // Dark, on the ground, must be jumped
	Bird                       // Red, at head height, must be ducked
)

// Obstacle is one obstacle on the page, in page pixels.
type Obstacle struct {
	Kind   ObstacleKind
	X      int // Left edge
	Top    int
	Width  int
	Height int
}

// Rect returns the obstacle's page rectangle.
func (o Obstacle) Rect() core.Rect {
	return core.NewRect(o.X, o.Top, o.Width, o.Height)
}

// Color returns the colour the obstacle is painted with.
func (o Obstacle) Color() core.RGB {
	if o.Kind == Bird {
		return BirdColor
	}
	return InkColor
}

// ObstacleManager handles spawning, movement, and removal of obstacles.
type ObstacleManager struct {
	obstacles  []Obstacle
	rng        *rand.Rand
	cfg        *config.SimConfig
	difficulty *config.DifficultyManager
	nextSpawnX int // X position where next obstacle will spawn
}

// NewObstacleManager creates a new obstacle manager with the given RNG seed.
func NewObstacleManager(seed int64, cfg *config.SimConfig, diff *config.DifficultyManager) *ObstacleManager {
	om := &ObstacleManager{
		obstacles:  make([]Obstacle, 0, 8),
		cfg:        cfg,
		difficulty: diff,
	}
	om.Reset(seed)
	return om
}

// Reset clears all obstacles and reseeds the RNG.
func (om *ObstacleManager) Reset(seed int64) {
	om.obstacles = om.obstacles[:0]
	om.rng = rand.New(rand.NewSource(seed))
	om.nextSpawnX = om.cfg.Width + om.cfg.Obstacles.MinSpacing // First obstacle spawns off-page
}

// Update moves obstacles left and spawns new ones as needed.
func (om *ObstacleManager) Update(score int, frames int) {
	speed := int(om.difficulty.Speed(om.cfg.Physics.BaseSpeed, score, frames))
	if speed < 1 {
		speed = 1
	}

	for i := range om.obstacles {
		om.obstacles[i].X -= speed
	}

	// Drop obstacles that have left the page
	valid := om.obstacles[:0]
	for _, o := range om.obstacles {
		if o.X+o.Width > 0 {
			valid = append(valid, o)
		}
	}
	om.obstacles = valid

	om.nextSpawnX -= speed
	if om.nextSpawnX <= om.cfg.Width {
		om.spawn(score, frames)
	}
}

// spawn creates a new obstacle at the spawn position.
func (om *ObstacleManager) spawn(score int, frames int) {
	oc := om.cfg.Obstacles

	var o Obstacle
	if om.rng.Float64() < oc.BirdChance {
		o = Obstacle{
			Kind:   Bird,
			X:      om.nextSpawnX,
			Top:    oc.BirdTop,
			Width:  oc.BirdWidth,
			Height: oc.BirdHeight,
		}
	} else {
		width := randRange(om.rng, oc.MinWidth, oc.MaxWidth)
		height := randRange(om.rng, oc.MinHeight, oc.MaxHeight)
		o = Obstacle{
			Kind:   Cactus,
			X:      om.nextSpawnX,
			Top:    om.cfg.GroundY - height,
			Width:  width,
			Height: height,
		}
	}
	om.obstacles = append(om.obstacles, o)

	// Spacing shrinks with difficulty but never below the minimum
	spacing := randRange(om.rng, oc.MinSpacing,
		om.difficulty.Spacing(oc.MaxSpacing, oc.MinSpacing, score, frames))

	om.nextSpawnX += o.Width + spacing
}

// Obstacles returns the current list of obstacles.
func (om *ObstacleManager) Obstacles() []Obstacle {
	return om.obstacles
}

// At returns the obstacle covering page pixel (x, y), if any.
func (om *ObstacleManager) At(x, y int) (Obstacle, bool) {
	for _, o := range om.obstacles {
		if o.Rect().Contains(x, y) {
			return o, true
		}
	}
	return Obstacle{}, false
}

// CheckCollision tests if the given rectangle collides with any obstacle.
func (om *ObstacleManager) CheckCollision(player core.Rect) bool {
	for _, o := range om.obstacles {
		if player.Intersects(o.Rect()) {
			return true
		}
	}
	return false
}

func randRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
