package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/dinobot/internal/core"
)

//go:embed defaults/dinobot.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}

// Default returns the hardcoded default configuration. It mirrors
// defaults/dinobot.yaml and is used when the embedded file cannot be parsed.
func Default() Config {
	return Config{
		Layout: Layout{
			ObstacleX:  1400,
			LowLaneY:   640,
			HighLaneY:  515,
			ColorProbe: core.Point{X: 1400, Y: 635},
			PlayerX:    85,
			GameOverProbes: []core.Point{
				{X: 610, Y: 440},
				{X: 770, Y: 440},
				{X: 945, Y: 440},
			},
		},
		Sensor: SensorConfig{
			Geometry:        GeometryStatic,
			ScanFrom:        160,
			ScanStride:      5,
			DarkMax:         100,
			RedMin:          200,
			GameOverGray:    172,
			MaxReadFailures: 50,
		},
		Agent: AgentConfig{
			Representation:   RepresentationNetwork,
			LearningRate:     0.1,
			Discount:         0.9,
			ExplorationRate:  0.3,
			ExplorationDecay: 1.0,
			ExplorationMin:   0.0,
			Hidden:           16,
			Seed:             123,
			Rewards: RewardsConfig{
				Survive: 1,
				Crash:   -100,
			},
			Table: TableConfig{
				HeightBucket:   25,
				DistanceBucket: 100,
			},
		},
		Run: RunConfig{
			Episodes:      10,
			TickInterval:  100 * time.Millisecond,
			MaxTicks:      0,
			EndOnGameOver: true,
		},
		Keys: KeysConfig{
			Jump: "space",
			Duck: "down",
		},
		Sim: SimConfig{
			Seed:       1,
			Width:      1600,
			Height:     800,
			FPS:        60,
			GroundY:    660,
			PlayerX:    1185,
			DuckFrames: 30,
			Physics: SimPhysics{
				Gravity:      0.8,
				FastFall:     2.4,
				JumpImpulse:  -16,
				MaxFallSpeed: 20,
				BaseSpeed:    10,
			},
			Player: SimPlayer{
				Width:      60,
				Height:     160,
				DuckWidth:  90,
				DuckHeight: 80,
			},
			Obstacles: SimObstacles{
				MinWidth:   70,
				MaxWidth:   90,
				MinHeight:  50,
				MaxHeight:  90,
				MinSpacing: 500,
				MaxSpacing: 1200,
				BirdChance: 0.25,
				BirdTop:    490,
				BirdWidth:  70,
				BirdHeight: 50,
			},
			Difficulty: DifficultyConfig{
				Enabled:      true,
				InitialLevel: 0.0,
				Progression: ProgressionConfig{
					Type:  "time",
					MaxAt: 6000,
				},
				Scaling: ScalingConfig{
					SpeedMultiplier:  0.15,
					SpacingReduction: 200,
				},
			},
		},
		Storage: StorageConfig{
			Path: "~/.dinobot/runs.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Serve: ServeConfig{
			Address:     ":23234",
			HostKeyPath: ".ssh/dinobot_ed25519",
			IdleTimeout: 30 * time.Minute,
			Episodes:    50,
		},
	}
}
