package models

// VoiceSettingsKey is the fixed storage key the voice settings record lives under
const VoiceSettingsKey = "intellimind.voiceSettings"

// Slider bounds for the settings controls
const (
	MinRate   = 0.5
	MaxRate   = 2.0
	MinPitch  = 0.0
	MaxPitch  = 2.0
	MinVolume = 0.0
	MaxVolume = 1.0
)

// VoiceSettings configures speech synthesis and recognition
type VoiceSettings struct {
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
	Lang   string  `json:"lang"`
}

// DefaultVoiceSettings returns the settings used when nothing is persisted
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Rate:   1.0,
		Pitch:  1.0,
		Volume: 1.0,
		Lang:   "en-US",
	}
}

// Normalized clamps numeric fields into their slider ranges and fills an
// empty language with the default.
func (v VoiceSettings) Normalized() VoiceSettings {
	v.Rate = clamp(v.Rate, MinRate, MaxRate)
	v.Pitch = clamp(v.Pitch, MinPitch, MaxPitch)
	v.Volume = clamp(v.Volume, MinVolume, MaxVolume)
	if v.Lang == "" {
		v.Lang = DefaultVoiceSettings().Lang
	}
	return v
}

// Languages returns the recognition/synthesis languages offered by the settings panel
func Languages() []string {
	return []string{"en-US", "en-GB", "es-ES", "fr-FR", "de-DE", "it-IT", "pt-BR", "ja-JP", "zh-CN"}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
