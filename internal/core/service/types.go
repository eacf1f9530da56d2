package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docker/go-units"
)

// Default health probe settings used when the manifest leaves them out.
const (
	DefaultHealthPeriod  = Duration(10 * time.Second)
	DefaultHealthTimeout = Duration(5 * time.Second)
)

// Duration is a time.Duration that marshals as a Go duration string ("10s")
// in YAML, JSON and TOML manifests.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalText implements encoding.TextUnmarshaler (used by the TOML decoder).
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalJSON emits the duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// ByteSize is a memory quantity in bytes that marshals as a human-readable
// size ("256MB") in manifests.
type ByteSize int64

func (b ByteSize) String() string {
	return units.BytesSize(float64(b))
}

// UnmarshalText parses quantities like "256MB" or "1GiB".
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := units.RAMInBytes(string(text))
	if err != nil {
		return fmt.Errorf("invalid byte quantity %q: %w", string(text), err)
	}
	*b = ByteSize(n)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalJSON accepts a quantity string.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("byte quantity must be a string: %w", err)
	}
	return b.UnmarshalText([]byte(s))
}

// MarshalJSON emits the quantity string.
func (b ByteSize) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return b.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// Fingerprint returns a stable digest of the whole configuration, used to
// detect manifests that have not changed since the last successful apply.
func (c *Config) Fingerprint() string {
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Fingerprint returns a stable digest of the effective build settings. Two
// builds with the same fingerprint produce the same image.
func (b *BuildSpec) Fingerprint() string {
	effective := &BuildSpec{
		Builder:    b.GetBuilder(),
		Context:    b.GetContext(),
		Dockerfile: b.GetDockerfile(),
	}
	data, _ := json.Marshal(effective)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
