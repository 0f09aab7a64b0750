package config

import "testing"

func TestDifficultyLevelProgression(t *testing.T) {
	dm := NewDifficultyManager(DifficultyConfig{
		Enabled:     true,
		Progression: ProgressionConfig{Type: "time", MaxAt: 100},
		Scaling:     ScalingConfig{SpeedMultiplier: 1.0, SpacingReduction: 200},
	})

	if got := dm.Level(0, 0); got != 0 {
		t.Errorf("Level at start = %v, want 0", got)
	}
	if got := dm.Level(0, 50); got != 0.5 {
		t.Errorf("Level halfway = %v, want 0.5", got)
	}
	if got := dm.Level(0, 1000); got != 1 {
		t.Errorf("Level past max = %v, want 1", got)
	}
	if got := dm.Speed(10, 0, 100); got != 20 {
		t.Errorf("Speed at max = %v, want 20", got)
	}
	if got := dm.Spacing(500, 400, 0, 100); got != 400 {
		t.Errorf("Spacing floor = %v, want 400", got)
	}
	if got := dm.Spacing(1000, 400, 0, 100); got != 800 {
		t.Errorf("Spacing at max = %v, want 800", got)
	}
}

func TestDifficultyDisabledUsesInitialLevel(t *testing.T) {
	dm := NewDifficultyManager(DifficultyConfig{
		Enabled:      false,
		InitialLevel: 0.3,
		Progression:  ProgressionConfig{Type: "time", MaxAt: 100},
	})
	if got := dm.Level(0, 100); got != 0.3 {
		t.Errorf("Level = %v, want 0.3", got)
	}
	if dm.IsEnabled() {
		t.Error("IsEnabled = true, want false")
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := Default().Sim
	ApplyPreset(&cfg, DifficultyHard)
	if !cfg.Difficulty.Enabled || cfg.Difficulty.InitialLevel != 0.7 {
		t.Errorf("hard preset = %+v", cfg.Difficulty)
	}
	ApplyPreset(&cfg, DifficultyFixed)
	if cfg.Difficulty.Enabled {
		t.Error("fixed preset should disable progression")
	}

	if _, err := ParseDifficultyPreset("brutal"); err == nil {
		t.Error("expected error for unknown preset")
	}
}
