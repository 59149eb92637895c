// Package quality defines the global rendering quality mode shared by the
// performance monitor, the LOD system and the settings surfaces.
package quality

import (
	"encoding"
	"fmt"
	"strings"
)

// Mode is a global quality mode.
type Mode string

const (
	High   Mode = "high"
	Medium Mode = "medium"
	Low    Mode = "low"
)

var _ encoding.TextUnmarshaler = (*Mode)(nil)

// Parse converts a case-insensitive name into a Mode.
func Parse(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case High, Medium, Low:
		return m, nil
	}
	return "", fmt.Errorf("quality: unknown mode %q (use high, medium or low)", s)
}

// UnmarshalText lets modes appear in JSON and YAML config files.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Valid reports whether m is one of the three modes.
func (m Mode) Valid() bool {
	return m == High || m == Medium || m == Low
}

// Lower returns the next lower mode, staying at Low.
func (m Mode) Lower() Mode {
	switch m {
	case High:
		return Medium
	default:
		return Low
	}
}

// Higher returns the next higher mode, staying at High.
func (m Mode) Higher() Mode {
	switch m {
	case Low:
		return Medium
	default:
		return High
	}
}

func (m Mode) String() string { return string(m) }
