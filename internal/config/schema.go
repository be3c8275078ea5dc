package config

import "fmt"

// Frame-change handler modes: whether the host reports frame steps before,
// after, or not at all.
const (
	FramePre  = "PRE"
	FramePost = "POST"
	FrameNone = "NONE"
)

// Settings is the top-level YAML structure.
type Settings struct {
	LogLevel        string `yaml:"log_level"`         // DEBUG | INFO | WARN | ERROR
	LogUpdateEvents bool   `yaml:"log_update_events"` // audit trail of raw/change events
	FrameChangeMode string `yaml:"frame_change_mode"` // PRE | POST | NONE
}

// Debug reports whether verbose event logging and reconciliation self-checks
// are enabled. Both knobs must be set, matching the host preference pair.
func (s *Settings) Debug() bool {
	return s.LogLevel == "DEBUG" && s.LogUpdateEvents
}

// Validate checks enum fields.
func Validate(s *Settings) error {
	switch s.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("config: unknown log_level %q", s.LogLevel)
	}
	switch s.FrameChangeMode {
	case FramePre, FramePost, FrameNone:
	default:
		return fmt.Errorf("config: unknown frame_change_mode %q", s.FrameChangeMode)
	}
	return nil
}
