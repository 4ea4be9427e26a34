package config

import "sort"

// Presets override the sandbox section of DefaultConfig.
var Presets = map[string]func(*SandboxConfig){
	"classic": func(s *SandboxConfig) {},
	"elastic": func(s *SandboxConfig) {
		s.BoxK, s.CollisionK = 1, 1
	},
	"sticky": func(s *SandboxConfig) {
		s.BoxK, s.CollisionK, s.AttractionK = 0.5, 0.2, 0.1
	},
	"dense": func(s *SandboxConfig) {
		s.FillRatio, s.MinBall, s.MaxBall = 0.75, 0.03, 0.06
	},
	"coarse": func(s *SandboxConfig) {
		s.Relaxation = 3
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(&cfg.Sandbox)
	return cfg
}

// Apply overlays the named preset on c and reports whether it exists.
func (c *Config) Apply(name string) bool {
	apply, ok := Presets[name]
	if ok {
		apply(&c.Sandbox)
	}
	return ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
