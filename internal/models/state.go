// Package models defines the data structures shared by the hapticd
// controller, persistence and HTTP layers.
package models

// Capabilities mirrors the capability flags of the opened device.
type Capabilities struct {
	AmplitudeControl  bool `json:"amplitude_control"`
	PredefinedEffects bool `json:"predefined_effects"`
}

// State is a snapshot of the actuator, published after every operation.
type State struct {
	Playing          bool         `json:"playing"`
	Slot             int          `json:"slot"`           // -1 when no slot is installed
	PendingEffect    int          `json:"pending_effect"` // -1 when none is queued
	Magnitude        int          `json:"magnitude"`
	Amplitude        int          `json:"amplitude"` // last amplitude set by a client, 0 if never set
	LastPlayLengthMs int64        `json:"last_play_length_ms"`
	Capabilities     Capabilities `json:"capabilities"`
	Info             Info         `json:"info"`
}

// Info describes the daemon and the device it drives.
type Info struct {
	Version string `json:"version"`
	Device  string `json:"device"`
	Mock    bool   `json:"mock"`
}

// Settings is the persisted runtime configuration.
type Settings struct {
	// Amplitude is the last level accepted by SetAmplitude, restored at
	// startup. 0 means never set and leaves the default magnitude in place.
	Amplitude uint8 `json:"amplitude"`
}

// DefaultSettings returns the settings used when nothing has been saved.
func DefaultSettings() Settings {
	return Settings{}
}
