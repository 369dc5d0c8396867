package data

import (
	"fmt"
	"os"

	"github.com/gunpong/server/internal/world"
	"gopkg.in/yaml.v3"
)

// effectsFile mirrors world.Effects with yaml tags. Unmarshal only touches
// keys present in the file, so pre-filling with the shipped defaults makes
// every key optional.
type effectsFile struct {
	TrailSize      float32 `yaml:"trail_size"`
	TrailAge       float64 `yaml:"trail_age"`
	TrailVelJitter float32 `yaml:"trail_vel_jitter"`

	ImpactCount      int     `yaml:"impact_count"`
	ImpactSize       float32 `yaml:"impact_size"`
	ImpactAge        float64 `yaml:"impact_age"`
	ImpactPosJitter  float32 `yaml:"impact_pos_jitter"`
	ImpactVelJitterX float32 `yaml:"impact_vel_jitter_x"`
	ImpactVelJitterY float32 `yaml:"impact_vel_jitter_y"`
	ImpactSizeJitter float32 `yaml:"impact_size_jitter"`
	ImpactAgeJitter  float64 `yaml:"impact_age_jitter"`

	PaddleHitAge       float64 `yaml:"paddle_hit_age"`
	PaddleHitAgeJitter float64 `yaml:"paddle_hit_age_jitter"`
	PaddleHitPosJitter float32 `yaml:"paddle_hit_pos_jitter"`

	GoalCount     int     `yaml:"goal_count"`
	GoalAge       float64 `yaml:"goal_age"`
	GoalAgeJitter float64 `yaml:"goal_age_jitter"`
	GoalPosJitter float32 `yaml:"goal_pos_jitter"`

	AmbientPeriod    uint64  `yaml:"ambient_period"`
	AmbientSize      float32 `yaml:"ambient_size"`
	AmbientAge       float64 `yaml:"ambient_age"`
	AmbientFall      float32 `yaml:"ambient_fall"`
	AmbientVelJitter float32 `yaml:"ambient_vel_jitter"`
}

// LoadEffects reads particle tuning overrides from a YAML file. A missing
// file is not an error; the shipped defaults apply.
func LoadEffects(path string) (world.Effects, error) {
	def := world.DefaultEffects()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("read effects: %w", err)
	}

	f := fromEffects(def)
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return def, fmt.Errorf("parse effects: %w", err)
	}
	return toEffects(f), nil
}

func fromEffects(e world.Effects) effectsFile {
	return effectsFile{
		TrailSize:      e.TrailSize,
		TrailAge:       e.TrailAge,
		TrailVelJitter: e.TrailVelJitter,

		ImpactCount:      e.ImpactCount,
		ImpactSize:       e.ImpactSize,
		ImpactAge:        e.ImpactAge,
		ImpactPosJitter:  e.ImpactPosJitter,
		ImpactVelJitterX: e.ImpactVelJitterX,
		ImpactVelJitterY: e.ImpactVelJitterY,
		ImpactSizeJitter: e.ImpactSizeJitter,
		ImpactAgeJitter:  e.ImpactAgeJitter,

		PaddleHitAge:       e.PaddleHitAge,
		PaddleHitAgeJitter: e.PaddleHitAgeJitter,
		PaddleHitPosJitter: e.PaddleHitPosJitter,

		GoalCount:     e.GoalCount,
		GoalAge:       e.GoalAge,
		GoalAgeJitter: e.GoalAgeJitter,
		GoalPosJitter: e.GoalPosJitter,

		AmbientPeriod:    e.AmbientPeriod,
		AmbientSize:      e.AmbientSize,
		AmbientAge:       e.AmbientAge,
		AmbientFall:      e.AmbientFall,
		AmbientVelJitter: e.AmbientVelJitter,
	}
}

func toEffects(f effectsFile) world.Effects {
	return world.Effects{
		TrailSize:      f.TrailSize,
		TrailAge:       f.TrailAge,
		TrailVelJitter: f.TrailVelJitter,

		ImpactCount:      f.ImpactCount,
		ImpactSize:       f.ImpactSize,
		ImpactAge:        f.ImpactAge,
		ImpactPosJitter:  f.ImpactPosJitter,
		ImpactVelJitterX: f.ImpactVelJitterX,
		ImpactVelJitterY: f.ImpactVelJitterY,
		ImpactSizeJitter: f.ImpactSizeJitter,
		ImpactAgeJitter:  f.ImpactAgeJitter,

		PaddleHitAge:       f.PaddleHitAge,
		PaddleHitAgeJitter: f.PaddleHitAgeJitter,
		PaddleHitPosJitter: f.PaddleHitPosJitter,

		GoalCount:     f.GoalCount,
		GoalAge:       f.GoalAge,
		GoalAgeJitter: f.GoalAgeJitter,
		GoalPosJitter: f.GoalPosJitter,

		AmbientPeriod:    f.AmbientPeriod,
		AmbientSize:      f.AmbientSize,
		AmbientAge:       f.AmbientAge,
		AmbientFall:      f.AmbientFall,
		AmbientVelJitter: f.AmbientVelJitter,
	}
}
