package config

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Percolatefile represents the structure of the percolate.yaml configuration file.
type Percolatefile struct {
	Version    string      `yaml:"version"`
	SourceRoot string      `yaml:"source_root"`
	OutputRoot string      `yaml:"output_root"`
	CacheDir   string      `yaml:"cache_dir"`
	MtimeDelay *Delay      `yaml:"mtime_delay"`
	Compiler   CommandLine `yaml:"compiler"`
	StaticURL  string      `yaml:"static_url"`
	LogFormat  string      `yaml:"log_format"`
}

// Delay is a duration written either as a Go duration ("10s", "1m30s") or as a
// plain number of seconds ("10", 2.5).
type Delay time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Delay) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return zerr.With(domain.ErrInvalidDelay, "line", value.Line)
	}

	parsed, err := ParseDelay(value.Value)
	if err != nil {
		return zerr.With(err, "line", value.Line)
	}

	*d = Delay(parsed)
	return nil
}

// maxDelaySeconds is the largest number of seconds a time.Duration can hold.
const maxDelaySeconds = float64(math.MaxInt64 / int64(time.Second))

// ParseDelay parses a delay in either accepted notation. Negative values are rejected.
func ParseDelay(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)

	d, err := time.ParseDuration(raw)
	if err != nil {
		seconds, numErr := strconv.ParseFloat(raw, 64)
		if numErr != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) ||
			seconds < 0 || seconds > maxDelaySeconds {
			return 0, zerr.With(domain.ErrInvalidDelay, "value", raw)
		}
		d = time.Duration(seconds * float64(time.Second))
	}

	if d < 0 {
		return 0, zerr.With(domain.ErrInvalidDelay, "value", raw)
	}
	return d, nil
}

// CommandLine is an argv written either as a YAML sequence or as a single
// whitespace separated string.
type CommandLine []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *CommandLine) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*c = strings.Fields(value.Value)
		return nil
	case yaml.SequenceNode:
		argv := []string{}
		if err := value.Decode(&argv); err != nil {
			return err
		}
		*c = argv
		return nil
	default:
		return zerr.With(zerr.New("compiler must be a string or a list of strings"), "line", value.Line)
	}
}
