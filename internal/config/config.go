// Package config provides YAML-based configuration loading for dinobot: the
// fixed screen layout the sensor probes, learning hyperparameters, loop timing,
// the simulated page, and storage/logging settings.
package config

import (
	"time"

	"github.com/vovakirdan/dinobot/internal/core"
)

// Config contains all dinobot configuration.
type Config struct {
	Layout  Layout        `yaml:"layout"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Agent   AgentConfig   `yaml:"agent"`
	Run     RunConfig     `yaml:"run"`
	Keys    KeysConfig    `yaml:"keys"`
	Sim     SimConfig     `yaml:"sim"`
	X11     X11Config     `yaml:"x11"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Serve   ServeConfig   `yaml:"serve"`
}

// Layout holds the fixed screen coordinates the sensor reads.
type Layout struct {
	ObstacleX      int          `yaml:"obstacle_x"`       // Column of both obstacle lanes
	LowLaneY       int          `yaml:"low_lane_y"`       // Ground obstacle lane
	HighLaneY      int          `yaml:"high_lane_y"`      // Flying obstacle lane
	ColorProbe     core.Point   `yaml:"color_probe"`      // Pixel sampled for colour features
	PlayerX        int          `yaml:"player_x"`         // Player column, used arithmetically
	GameOverProbes []core.Point `yaml:"game_over_probes"` // All must be game-over grey
}

// Geometry modes for obstacle height and distance.
const (
	GeometryStatic = "static" // Constant differences of the layout coordinates
	GeometryScan   = "scan"   // Measured by scanning the low lane
)

// SensorConfig defines colour thresholds and measurement behaviour.
type SensorConfig struct {
	Geometry        string `yaml:"geometry"`
	ScanFrom        int    `yaml:"scan_from"` // First column scanned, past the player
	ScanStride      int    `yaml:"scan_stride"`
	DarkMax         int    `yaml:"dark_max"`          // Channels strictly below count as dark
	RedMin          int    `yaml:"red_min"`           // Red strictly above counts as red
	GameOverGray    int    `yaml:"game_over_gray"`    // Exact grey value of the game-over banner
	MaxReadFailures int    `yaml:"max_read_failures"` // Consecutive failed reads before giving up
}

// Approximator representations.
const (
	RepresentationNetwork = "network"
	RepresentationTable   = "table"
)

// AgentConfig defines the learning agent's hyperparameters.
type AgentConfig struct {
	Representation   string        `yaml:"representation"`
	LearningRate     float64       `yaml:"learning_rate"`
	Discount         float64       `yaml:"discount"`
	ExplorationRate  float64       `yaml:"exploration_rate"`
	ExplorationDecay float64       `yaml:"exploration_decay"` // Applied after every episode
	ExplorationMin   float64       `yaml:"exploration_min"`
	Hidden           int           `yaml:"hidden"`
	Seed             int64         `yaml:"seed"`
	Rewards          RewardsConfig `yaml:"rewards"`
	Table            TableConfig   `yaml:"table"`
}

// RewardsConfig defines the fixed rewards.
type RewardsConfig struct {
	Survive float64 `yaml:"survive"`
	Crash   float64 `yaml:"crash"`
}

// TableConfig defines how features are bucketed into discrete states.
type TableConfig struct {
	HeightBucket   float64 `yaml:"height_bucket"`
	DistanceBucket float64 `yaml:"distance_bucket"`
}

// RunConfig defines the control loop.
type RunConfig struct {
	Episodes      int           `yaml:"episodes"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	MaxTicks      int           `yaml:"max_ticks"` // 0 = unbounded
	EndOnGameOver bool          `yaml:"end_on_game_over"`
}

// KeysConfig names the keys bound to each action.
type KeysConfig struct {
	Jump string `yaml:"jump"`
	Duck string `yaml:"duck"`
}

// SimConfig contains all configuration for the simulated game page.
type SimConfig struct {
	Seed       int64            `yaml:"seed"`
	Width      int              `yaml:"width"`
	Height     int              `yaml:"height"`
	FPS        int              `yaml:"fps"`
	GroundY    int              `yaml:"ground_y"`
	PlayerX    int              `yaml:"player_x"`    // Dino column on the simulated page; 0 keeps layout.player_x
	DuckFrames int              `yaml:"duck_frames"` // Minimum frames a duck tap lasts
	Realtime   bool             `yaml:"realtime"`    // Sleep through waits instead of fast-forwarding
	Physics    SimPhysics       `yaml:"physics"`
	Player     SimPlayer        `yaml:"player"`
	Obstacles  SimObstacles     `yaml:"obstacles"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// SimPhysics defines physics parameters in pixels per frame.
type SimPhysics struct {
	Gravity      float64 `yaml:"gravity"`
	FastFall     float64 `yaml:"fast_fall"` // Extra gravity while ducking mid-air
	JumpImpulse  float64 `yaml:"jump_impulse"`
	MaxFallSpeed float64 `yaml:"max_fall_speed"`
	BaseSpeed    float64 `yaml:"base_speed"`
}

// SimPlayer defines the dino's size.
type SimPlayer struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	DuckWidth  int `yaml:"duck_width"`
	DuckHeight int `yaml:"duck_height"`
}

// SimObstacles defines obstacle generation.
type SimObstacles struct {
	MinWidth   int     `yaml:"min_width"`
	MaxWidth   int     `yaml:"max_width"`
	MinHeight  int     `yaml:"min_height"`
	MaxHeight  int     `yaml:"max_height"`
	MinSpacing int     `yaml:"min_spacing"`
	MaxSpacing int     `yaml:"max_spacing"`
	BirdChance float64 `yaml:"bird_chance"`
	BirdTop    int     `yaml:"bird_top"`
	BirdWidth  int     `yaml:"bird_width"`
	BirdHeight int     `yaml:"bird_height"`
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/frames at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier  float64 `yaml:"speed_multiplier"`  // Multiplier added to speed at max difficulty
	SpacingReduction int     `yaml:"spacing_reduction"` // Spacing reduction at max difficulty
}

// X11Config configures the X11 backend.
type X11Config struct {
	Display string `yaml:"display"` // Empty means $DISPLAY
}

// StorageConfig configures run history persistence.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServeConfig configures the SSH spectator server.
type ServeConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	Episodes    int           `yaml:"episodes"`
}

// JumpKey resolves the configured jump key.
func (k KeysConfig) JumpKey() (core.Key, error) {
	return core.ParseKey(k.Jump)
}

// DuckKey resolves the configured duck key.
func (k KeysConfig) DuckKey() (core.Key, error) {
	return core.ParseKey(k.Duck)
}

// ForSim returns c with the layout the simulated page draws: the dino
// stands at sim.player_x, and scan geometry starts past it so the dino's
// own pixels never read as an obstacle.
func (c Config) ForSim() Config {
	if c.Sim.PlayerX <= 0 {
		return c
	}
	c.Layout.PlayerX = c.Sim.PlayerX
	past := c.Sim.PlayerX + core.Max(c.Sim.Player.Width, c.Sim.Player.DuckWidth)
	if c.Sensor.ScanFrom < past {
		c.Sensor.ScanFrom = past
	}
	return c
}

// FrameDuration returns the wall-clock length of one simulated frame.
func (s SimConfig) FrameDuration() time.Duration {
	if s.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.FPS)
}
