package agent

import "testing"

func TestEffortOfKnownLevels(t *testing.T) {
	cases := []struct {
		level      Level
		maxSteps   int
		maxSources int
	}{
		{LevelStandard, 50, 25},
		{LevelDeep, 100, 50},
		{LevelMax, 200, 100},
	}
	for _, c := range cases {
		p := EffortOf(c.level)
		if p.MaxSteps != c.maxSteps {
			t.Errorf("%s: MaxSteps = %d, want %d", c.level, p.MaxSteps, c.maxSteps)
		}
		if p.MaxSources != c.maxSources {
			t.Errorf("%s: MaxSources = %d, want %d", c.level, p.MaxSources, c.maxSources)
		}
	}
}

func TestEffortOfUnknownLevelDefaultsToStandard(t *testing.T) {
	p := EffortOf(Level("bogus"))
	if p.Level != LevelStandard {
		t.Fatalf("expected fallback to standard, got %s", p.Level)
	}
}

func TestDerivedQuantities(t *testing.T) {
	std := EffortOf(LevelStandard)
	if got := std.SearchSteps(); got != 15 {
		t.Errorf("standard SearchSteps = %d, want 15", got)
	}
	if got := std.SourcesToScrape(); got != 15 {
		t.Errorf("standard SourcesToScrape = %d, want 15", got)
	}
	if got := std.MinFindings(); got != 8 {
		t.Errorf("standard MinFindings = %d, want 8", got)
	}
	min, max := std.WordCountRange()
	if min != 1000 || max != 2000 {
		t.Errorf("standard WordCountRange = (%d,%d), want (1000,2000)", min, max)
	}
	if got := std.SectionCount(); got != 4 {
		t.Errorf("standard SectionCount = %d, want 4", got)
	}

	deep := EffortOf(LevelDeep)
	if got := deep.SearchSteps(); got != 25 {
		t.Errorf("deep SearchSteps = %d, want 25", got)
	}
	if got := deep.SourcesToScrape(); got != 35 {
		t.Errorf("deep SourcesToScrape = %d, want 35", got)
	}

	maxPreset := EffortOf(LevelMax)
	if got := maxPreset.SearchSteps(); got != 40 {
		t.Errorf("max SearchSteps = %d, want 40", got)
	}
	if got := maxPreset.SourcesToScrape(); got != 80 {
		t.Errorf("max SourcesToScrape = %d, want 80", got)
	}
}

func TestLoadEffortOverridesAppliesPartialFields(t *testing.T) {
	original := EffortOf(LevelStandard)
	defer func() { presets[LevelStandard] = original }()

	yamlData := []byte(`
standard:
  maxSteps: 60
`)
	if err := LoadEffortOverrides(yamlData); err != nil {
		t.Fatalf("LoadEffortOverrides: %v", err)
	}
	p := EffortOf(LevelStandard)
	if p.MaxSteps != 60 {
		t.Errorf("MaxSteps after override = %d, want 60", p.MaxSteps)
	}
	if p.MaxSources != original.MaxSources {
		t.Errorf("MaxSources should be untouched, got %d, want %d", p.MaxSources, original.MaxSources)
	}
}

func TestLoadEffortOverridesRejectsMalformedYAML(t *testing.T) {
	if err := LoadEffortOverrides([]byte("not: [valid: yaml")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestCeilInt(t *testing.T) {
	cases := map[float64]int{
		0:    0,
		1:    1,
		1.1:  2,
		9.99: 10,
		10.0: 10,
	}
	for in, want := range cases {
		if got := ceilInt(in); got != want {
			t.Errorf("ceilInt(%v) = %d, want %d", in, got, want)
		}
	}
}
