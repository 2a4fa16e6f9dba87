package scene

import "sort"

// Preset is a named initial-condition variant of a built-in scene. Nil
// coordinate overrides keep the scene defaults.
type Preset struct {
	Scene string
	Q     []float64
	QD    []float64
	Steps int
}

var Presets = map[string]map[string]*Preset{
	"pendulum": {
		"small": {
			Scene: "pendulum", Steps: 4000,
			Q: []float64{0.2}, QD: []float64{0},
		},
		"large": {
			Scene: "pendulum", Steps: 4000,
			Q: []float64{2.5}, QD: []float64{0},
		},
		"spinning": {
			Scene: "pendulum", Steps: 6000,
			Q: []float64{0.1}, QD: []float64{8},
		},
	},
	"double_pendulum": {
		"gentle": {
			Scene: "double_pendulum", Steps: 4000,
			Q: []float64{0.3, 0.3}, QD: []float64{0, 0},
		},
		"chaos": {
			Scene: "double_pendulum", Steps: 10000,
			Q: []float64{3.0, 0.0}, QD: []float64{0, 0},
		},
	},
	"spherical_pendulum": {
		"planar": {
			Scene: "spherical_pendulum", Steps: 4000,
		},
		"cone": {
			Scene: "spherical_pendulum", Steps: 6000,
			QD: []float64{1.5, 0, 0},
		},
	},
	"slider": {
		"rebound": {
			Scene: "slider", Steps: 400,
		},
	},
	"triple_slider": {
		"rebound": {
			Scene: "triple_slider", Steps: 600,
		},
	},
	"capsule_slide": {
		"fast": {
			Scene: "capsule_slide", Steps: 1000,
		},
		"slow": {
			Scene: "capsule_slide", Steps: 1500,
			QD: []float64{1, 0, 0, 0, 0, 0},
		},
	},
	"sphere_drop": {
		"bounce": {
			Scene: "sphere_drop", Steps: 3000,
		},
	},
}

// GetPreset looks up one preset, nil when missing.
func GetPreset(sceneName, preset string) *Preset {
	scenePresets, ok := Presets[sceneName]
	if !ok {
		return nil
	}
	p, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	return p
}

// ListPresets names the presets of one scene in stable order, nil when the
// scene has none.
func ListPresets(sceneName string) []string {
	scenePresets, ok := Presets[sceneName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds the preset's scene with its coordinate overrides applied.
func (p *Preset) Resolve() (*Scene, error) {
	s, err := Get(p.Scene)
	if err != nil {
		return nil, err
	}
	if p.Q != nil {
		s.Q = append([]float64(nil), p.Q...)
	}
	if p.QD != nil {
		s.QD = append([]float64(nil), p.QD...)
	}
	if err := s.Sys.CheckDims(s.Q, s.QD); err != nil {
		return nil, err
	}
	return s, nil
}
