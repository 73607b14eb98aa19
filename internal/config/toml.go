// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/fretdrill/fretdrill/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Adaptive AdaptiveConfig `toml:"adaptive"`
	Deadline DeadlineConfig `toml:"deadline"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Tuning        *string `toml:"tuning"`
	MaxFret       *int    `toml:"max-fret"`
	RoundSeconds  *int    `toml:"round-seconds"`
	Intervals     *bool   `toml:"intervals"`
	Triads        *bool   `toml:"triads"`
	Strings       *[]int  `toml:"strings"`
	AutoRecommend *bool   `toml:"auto-recommend"`
}

// AdaptiveConfig maps overrides for the learner model thresholds.
type AdaptiveConfig struct {
	MinTime                 *float64 `toml:"min-time"`
	MaxResponseTime         *float64 `toml:"max-response-time"`
	InitialStability        *float64 `toml:"initial-stability"`
	MaxStability            *float64 `toml:"max-stability"`
	StabilityGrowthBase     *float64 `toml:"stability-growth-base"`
	StabilityDecayOnWrong   *float64 `toml:"stability-decay-on-wrong"`
	RecallThreshold         *float64 `toml:"recall-threshold"`
	AutomaticityThreshold   *float64 `toml:"automaticity-threshold"`
	SpeedBonusMax           *float64 `toml:"speed-bonus-max"`
	SelfCorrectionThreshold *float64 `toml:"self-correction-threshold"`
	AutomaticityTarget      *float64 `toml:"automaticity-target"`
	ExpansionThreshold      *float64 `toml:"expansion-threshold"`
}

// DeadlineConfig maps overrides for the deadline staircase.
type DeadlineConfig struct {
	DecreaseFactor     *float64 `toml:"decrease-factor"`
	IncreaseFactor     *float64 `toml:"increase-factor"`
	MinDeadlineMargin  *float64 `toml:"min-deadline-margin"`
	EwmaMultiplier     *float64 `toml:"ewma-multiplier"`
	HeadroomMultiplier *float64 `toml:"headroom-multiplier"`
	MaxDropFactor      *float64 `toml:"max-drop-factor"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ApplyAdaptive overlays file overrides onto an adaptive config.
func ApplyAdaptive(base model.AdaptiveConfig, over AdaptiveConfig) model.AdaptiveConfig {
	applyFloat(&base.MinTime, over.MinTime)
	applyFloat(&base.MaxResponseTime, over.MaxResponseTime)
	applyFloat(&base.InitialStability, over.InitialStability)
	applyFloat(&base.MaxStability, over.MaxStability)
	applyFloat(&base.StabilityGrowthBase, over.StabilityGrowthBase)
	applyFloat(&base.StabilityDecayOnWrong, over.StabilityDecayOnWrong)
	applyFloat(&base.RecallThreshold, over.RecallThreshold)
	applyFloat(&base.AutomaticityThreshold, over.AutomaticityThreshold)
	applyFloat(&base.SpeedBonusMax, over.SpeedBonusMax)
	applyFloat(&base.SelfCorrectionThreshold, over.SelfCorrectionThreshold)
	applyFloat(&base.AutomaticityTarget, over.AutomaticityTarget)
	applyFloat(&base.ExpansionThreshold, over.ExpansionThreshold)
	return base
}

// ApplyDeadline overlays file overrides onto a deadline config.
func ApplyDeadline(base model.DeadlineConfig, over DeadlineConfig) model.DeadlineConfig {
	applyFloat(&base.DecreaseFactor, over.DecreaseFactor)
	applyFloat(&base.IncreaseFactor, over.IncreaseFactor)
	applyFloat(&base.MinDeadlineMargin, over.MinDeadlineMargin)
	applyFloat(&base.EwmaMultiplier, over.EwmaMultiplier)
	applyFloat(&base.HeadroomMultiplier, over.HeadroomMultiplier)
	applyFloat(&base.MaxDropFactor, over.MaxDropFactor)
	return base
}

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
