package flagger

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Thresholds defines warning and critical levels for one measure.
type Thresholds struct {
	Warning  float64 `yaml:"warning"`
	Critical float64 `yaml:"critical"`
}

func (t Thresholds) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Warning, validation.Min(0.0)),
		validation.Field(&t.Critical, validation.Min(t.Warning)),
	)
}

type Config struct {
	DurationMS Thresholds `yaml:"duration_ms"`
	RoundTrips Thresholds `yaml:"round_trips"`
	Nodes      Thresholds `yaml:"nodes"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DurationMS),
		validation.Field(&c.RoundTrips),
		validation.Field(&c.Nodes),
	)
}

func DefaultConfig() Config {
	return Config{
		DurationMS: Thresholds{Warning: float64((2 * time.Second).Milliseconds()), Critical: float64((10 * time.Second).Milliseconds())},
		RoundTrips: Thresholds{Warning: 200, Critical: 1000},
		Nodes:      Thresholds{Warning: 5000, Critical: 50000},
	}
}
