package config

// SoundMode selects how feedback cues are played.
type SoundMode string

const (
	SoundOff     SoundMode = "off"     // no cues
	SoundBell    SoundMode = "bell"    // terminal bell
	SoundCommand SoundMode = "command" // external player on the cue files
)

// ValidSoundModes lists accepted sound.mode values.
var ValidSoundModes = []SoundMode{SoundOff, SoundBell, SoundCommand}

// Valid reports whether m is a known mode.
func (m SoundMode) Valid() bool {
	for _, v := range ValidSoundModes {
		if m == v {
			return true
		}
	}
	return false
}

// SoundConfig configures feedback cues.
type SoundConfig struct {
	Mode SoundMode `yaml:"mode"`
	// Dir holds click.wav, send.wav and receive.wav for command mode.
	Dir string `yaml:"dir"`
	// Command is the player invoked as "<command> <file>".
	Command string `yaml:"command"`
}

// UIConfig holds user interface configuration.
type UIConfig struct {
	Theme string `yaml:"theme"` // auto, light, dark
	// Markdown renders assistant answers through glamour instead of verbatim.
	Markdown bool `yaml:"markdown"`
}
