package live2d

import (
	"fmt"
	"math/big"
	"strconv"
	"time"
)

const settingType = "Live2D Model Setting"

// ModelSetting is the model description consumed by the Live2D widget.
type ModelSetting struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	Timestamp int64  `json:"timestamp,omitempty"`
	*Debug
	Model          string   `json:"model"`
	Textures       []string `json:"textures"`
	HitAreasCustom HitAreas `json:"hit_areas_custom"`
	Layout         Layout   `json:"layout"`
	Motions        Motions  `json:"motions"`
}

// Debug carries the selection trace some routes expose to the widget.
type Debug struct {
	Timestamp int64    `json:"debug_timestamp"`
	ModelID   int      `json:"debug_model_id"`
	ModelName string   `json:"debug_model_name"`
	TParam    *string  `json:"debug_t_param"`
	Seed      *big.Int `json:"debug_seed"`
	URL       string   `json:"debug_url"`
}

// HitAreas are the head and body tap regions in model coordinates.
type HitAreas struct {
	HeadX [2]float64 `json:"head_x"`
	HeadY [2]float64 `json:"head_y"`
	BodyX [2]float64 `json:"body_x"`
	BodyY [2]float64 `json:"body_y"`
}

// Layout positions and scales the model on the widget canvas.
type Layout struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Height  float64 `json:"height"`
}

// Motions groups the animation cues by trigger.
type Motions struct {
	Idle     []Motion `json:"idle"`
	TapBody  []Motion `json:"tap_body"`
	Thanking []Motion `json:"thanking"`
}

// Motion is one animation file with its fade durations in milliseconds.
type Motion struct {
	File    string `json:"file"`
	FadeIn  int    `json:"fade_in"`
	FadeOut int    `json:"fade_out"`
}

var defaultHitAreas = HitAreas{
	HeadX: [2]float64{-0.35, 0.6},
	HeadY: [2]float64{0.19, -0.2},
	BodyX: [2]float64{-0.3, -0.25},
	BodyY: [2]float64{0.3, -0.9},
}

var defaultLayout = Layout{CenterX: -0.05, CenterY: 0.25, Height: 2.7}

type fade struct{ in, out int }

type cueTimings struct {
	idle1, idle2, idle3, touch, thanking fade
}

// Fade durations in milliseconds. 22 snaps out of the third idle and reacts
// to touch more slowly than 33.
var timings = map[string]cueTimings{
	Persona22: {
		idle1: fade{2000, 2000}, idle2: fade{2000, 2000}, idle3: fade{100, 100},
		touch: fade{500, 200}, thanking: fade{2000, 2000},
	},
	Persona33: {
		idle1: fade{2000, 2000}, idle2: fade{2000, 2000}, idle3: fade{2000, 2000},
		touch: fade{150, 100}, thanking: fade{2000, 2000},
	},
}

// SettingOptions are the per-route knobs of the assembled document.
type SettingOptions struct {
	// BaseURL is prepended to every asset path, e.g. "../".
	BaseURL string
	// CacheBuster is appended to the rig and texture paths, e.g. "?v=123".
	CacheBuster string
	// Timestamp, when non-zero, is emitted as the top-level timestamp.
	Timestamp int64
	Debug     *Debug
}

// NewModelSetting assembles the model document for a persona and selection.
func NewModelSetting(persona string, sel Selection, opts SettingOptions) ModelSetting {
	root := fmt.Sprintf("%s2233/model/%s/", opts.BaseURL, persona)
	closet := fmt.Sprintf("%scloset.%s/", root, sel.Key)
	motion := func(cue string, f fade) Motion {
		return Motion{File: fmt.Sprintf("%s%s.v2.%s.mtn", root, persona, cue), FadeIn: f.in, FadeOut: f.out}
	}

	t, ok := timings[persona]
	if !ok {
		t = timings[Persona33]
	}

	return ModelSetting{
		Type:      settingType,
		Name:      persona + "-" + sel.Key,
		Label:     persona,
		Timestamp: opts.Timestamp,
		Debug:     opts.Debug,
		Model:     root + persona + ".v2.moc" + opts.CacheBuster,
		Textures: []string{
			root + "texture_00.png" + opts.CacheBuster,
			closet + sel.Textures[0] + opts.CacheBuster,
			closet + sel.Textures[1] + opts.CacheBuster,
			closet + sel.Textures[2] + opts.CacheBuster,
		},
		HitAreasCustom: defaultHitAreas,
		Layout:         defaultLayout,
		Motions: Motions{
			Idle: []Motion{
				motion("idle-01", t.idle1),
				motion("idle-02", t.idle2),
				motion("idle-03", t.idle3),
			},
			TapBody:  []Motion{motion("touch", t.touch)},
			Thanking: []Motion{motion("thanking", t.thanking)},
		},
	}
}

// CacheBuster returns a request stamp of now in milliseconds plus up to a
// second of jitter, and the matching "?v=" suffix.
func CacheBuster(now time.Time, rng Rand) (int64, string) {
	if rng == nil {
		rng = DefaultRand
	}
	stamp := now.UnixMilli() + int64(rng.IntN(1000))
	return stamp, "?v=" + strconv.FormatInt(stamp, 10)
}
