package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads dinobot configuration.
// Search order: customPath -> ~/.dinobot/config.yaml -> ./configs/dinobot.yaml -> embedded default.
// Files are decoded over the defaults, so a file only needs the keys it changes.
func Load(customPath string) (Config, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/dinobot.yaml"); err == nil {
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes YAML over the default configuration and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the bot cannot run with.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(len(c.Layout.GameOverProbes) > 0, "layout.game_over_probes must not be empty")
	check(c.Sensor.Geometry == GeometryStatic || c.Sensor.Geometry == GeometryScan,
		"sensor.geometry must be %q or %q, got %q", GeometryStatic, GeometryScan, c.Sensor.Geometry)
	check(c.Sensor.Geometry != GeometryScan || c.Sensor.ScanStride > 0, "sensor.scan_stride must be positive")
	check(c.Sensor.Geometry != GeometryScan || c.Sensor.ScanFrom < c.Layout.ObstacleX,
		"sensor.scan_from must be left of layout.obstacle_x")
	check(inByteRange(c.Sensor.DarkMax), "sensor.dark_max must be in [0,255], got %d", c.Sensor.DarkMax)
	check(inByteRange(c.Sensor.RedMin), "sensor.red_min must be in [0,255], got %d", c.Sensor.RedMin)
	check(inByteRange(c.Sensor.GameOverGray), "sensor.game_over_gray must be in [0,255], got %d", c.Sensor.GameOverGray)
	check(c.Sensor.MaxReadFailures > 0, "sensor.max_read_failures must be positive")

	check(c.Agent.Representation == RepresentationNetwork || c.Agent.Representation == RepresentationTable,
		"agent.representation must be %q or %q, got %q", RepresentationNetwork, RepresentationTable, c.Agent.Representation)
	check(c.Agent.LearningRate > 0, "agent.learning_rate must be positive")
	check(c.Agent.Discount >= 0 && c.Agent.Discount <= 1, "agent.discount must be in [0,1], got %g", c.Agent.Discount)
	check(c.Agent.ExplorationRate >= 0 && c.Agent.ExplorationRate <= 1,
		"agent.exploration_rate must be in [0,1], got %g", c.Agent.ExplorationRate)
	check(c.Agent.ExplorationDecay > 0 && c.Agent.ExplorationDecay <= 1,
		"agent.exploration_decay must be in (0,1], got %g", c.Agent.ExplorationDecay)
	check(c.Agent.ExplorationMin >= 0 && c.Agent.ExplorationMin <= 1,
		"agent.exploration_min must be in [0,1], got %g", c.Agent.ExplorationMin)
	check(c.Agent.Hidden > 0, "agent.hidden must be positive")
	check(c.Agent.Table.HeightBucket > 0 && c.Agent.Table.DistanceBucket > 0, "agent.table buckets must be positive")

	check(c.Run.Episodes > 0, "run.episodes must be positive")
	check(c.Run.TickInterval >= 0, "run.tick_interval must not be negative")
	check(c.Run.MaxTicks >= 0, "run.max_ticks must not be negative")

	if _, err := c.Keys.JumpKey(); err != nil {
		errs = append(errs, fmt.Errorf("keys.jump: %w", err))
	}
	if _, err := c.Keys.DuckKey(); err != nil {
		errs = append(errs, fmt.Errorf("keys.duck: %w", err))
	}

	check(c.Sim.Width > 0 && c.Sim.Height > 0, "sim size must be positive")
	check(c.Sim.GroundY > 0 && c.Sim.GroundY < c.Sim.Height, "sim.ground_y must be inside the page")
	check(c.Sim.FPS > 0, "sim.fps must be positive")
	check(c.Sim.PlayerX >= 0 && c.Sim.PlayerX < c.Layout.ObstacleX, "sim.player_x must be left of layout.obstacle_x")
	check(c.Sim.Obstacles.MinSpacing > 0 && c.Sim.Obstacles.MinSpacing <= c.Sim.Obstacles.MaxSpacing,
		"sim.obstacles spacing range is invalid")
	check(c.Sim.Obstacles.MinWidth > 0 && c.Sim.Obstacles.MinWidth <= c.Sim.Obstacles.MaxWidth,
		"sim.obstacles width range is invalid")
	check(c.Sim.Obstacles.MinHeight > 0 && c.Sim.Obstacles.MinHeight <= c.Sim.Obstacles.MaxHeight,
		"sim.obstacles height range is invalid")

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func inByteRange(v int) bool {
	return v >= 0 && v <= 255
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dinobot", filename)
}
