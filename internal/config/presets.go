package config

import "sort"

// Presets are named starting points. GetPreset hands out copies.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"calm": func() *Config {
		c := DefaultConfig()
		c.Physics.Wind = 0
		c.Physics.Damping = 0.1
		return c
	}(),
	"gust": func() *Config {
		c := DefaultConfig()
		c.Physics.Wind = 0.2
		c.Physics.WindDirection = [3]float64{0.3, 0, -1}
		c.Run.Duration = 20
		return c
	}(),
	"stiff": func() *Config {
		c := DefaultConfig()
		c.Physics.Stiffness = 40
		c.Run.Dt = 0.005
		return c
	}(),
	"large": func() *Config {
		c := DefaultConfig()
		c.Grid.Rows, c.Grid.Cols = 32, 32
		c.Grid.InitLength = 0.1
		c.Run.RecordEvery = 5
		return c
	}(),
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
