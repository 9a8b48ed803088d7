package agent

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Level names the three fixed effort presets a run can select.
type Level string

const (
	LevelStandard Level = "standard"
	LevelDeep     Level = "deep"
	LevelMax      Level = "max"
)

// Preset fixes the step budget, source caps, parallelism, timeouts, and
// quality threshold for the duration of a run. Presets are process-wide
// constants; a run freezes one for its whole lifetime.
type Preset struct {
	Level             Level
	MaxSteps          int
	TimeoutMs         int
	MaxSources        int
	Parallelism       int
	RecursionDepth    int
	QualityThreshold  float64
	AutoStopOnQuality bool
}

var presets = map[Level]Preset{
	LevelStandard: {
		Level: LevelStandard, MaxSteps: 50, TimeoutMs: 300_000, MaxSources: 25,
		Parallelism: 10, RecursionDepth: 1, QualityThreshold: 0.75, AutoStopOnQuality: false,
	},
	LevelDeep: {
		Level: LevelDeep, MaxSteps: 100, TimeoutMs: 900_000, MaxSources: 50,
		Parallelism: 15, RecursionDepth: 2, QualityThreshold: 0.80, AutoStopOnQuality: false,
	},
	LevelMax: {
		Level: LevelMax, MaxSteps: 200, TimeoutMs: 2_700_000, MaxSources: 100,
		Parallelism: 20, RecursionDepth: 3, QualityThreshold: 0.90, AutoStopOnQuality: false,
	},
}

// EffortOf looks up the preset for a level, defaulting to standard for any
// unrecognized value so callers never have to handle a lookup failure.
func EffortOf(level Level) Preset {
	if p, ok := presets[level]; ok {
		return p
	}
	return presets[LevelStandard]
}

// LoadEffortOverrides reads a YAML file of per-level preset overrides and
// applies them on top of the fixed defaults. Only fields present in the
// file are overridden; an empty or missing level is left untouched. This
// exists for local tuning of the budget constants without a rebuild.
func LoadEffortOverrides(data []byte) error {
	var overrides map[Level]struct {
		MaxSteps         *int     `yaml:"maxSteps"`
		TimeoutMs        *int     `yaml:"timeoutMs"`
		MaxSources       *int     `yaml:"maxSources"`
		Parallelism      *int     `yaml:"parallelism"`
		RecursionDepth   *int     `yaml:"recursionDepth"`
		QualityThreshold *float64 `yaml:"qualityThreshold"`
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse effort overrides: %w", err)
	}
	for level, o := range overrides {
		p, ok := presets[level]
		if !ok {
			continue
		}
		if o.MaxSteps != nil {
			p.MaxSteps = *o.MaxSteps
		}
		if o.TimeoutMs != nil {
			p.TimeoutMs = *o.TimeoutMs
		}
		if o.MaxSources != nil {
			p.MaxSources = *o.MaxSources
		}
		if o.Parallelism != nil {
			p.Parallelism = *o.Parallelism
		}
		if o.RecursionDepth != nil {
			p.RecursionDepth = *o.RecursionDepth
		}
		if o.QualityThreshold != nil {
			p.QualityThreshold = *o.QualityThreshold
		}
		presets[level] = p
	}
	return nil
}

// SearchSteps is the number of leading steps the Step Controller reserves
// for forced search, derived per-effort per the budget table.
func (p Preset) SearchSteps() int {
	switch p.Level {
	case LevelDeep:
		return int(float64(p.MaxSteps) * 0.25)
	case LevelMax:
		return int(float64(p.MaxSteps) * 0.20)
	default:
		return int(float64(p.MaxSteps) * 0.30)
	}
}

// SourcesToScrape is the target scrape count the controller aims for
// before relaxing its forced-tool policy, derived per-effort.
func (p Preset) SourcesToScrape() int {
	var frac float64
	switch p.Level {
	case LevelDeep:
		frac = 0.70
	case LevelMax:
		frac = 0.80
	default:
		frac = 0.60
	}
	return ceilInt(float64(p.MaxSources) * frac)
}

// MinFindings is the minimum number of recorded findings the effort
// instruction text asks the model to reach before synthesis.
func (p Preset) MinFindings() int {
	switch p.Level {
	case LevelDeep:
		return 15
	case LevelMax:
		return 25
	default:
		return 8
	}
}

// WordCountRange is the target word-count band for the final report,
// quoted in the effort instruction text and checked by quality stats.
func (p Preset) WordCountRange() (min, max int) {
	switch p.Level {
	case LevelDeep:
		return 2000, 4000
	case LevelMax:
		return 4000, 8000
	default:
		return 1000, 2000
	}
}

// SectionCount is the minimum number of `## ` sections the final report
// must contain for the effort level.
func (p Preset) SectionCount() int {
	switch p.Level {
	case LevelDeep:
		return 6
	case LevelMax:
		return 8
	default:
		return 4
	}
}

func ceilInt(f float64) int {
	i := int(f)
	if float64(i) < f {
		i++
	}
	return i
}
