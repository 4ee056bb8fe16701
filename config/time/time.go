// Package time provides a duration type decodable from TOML strings like
// "2h45m".
package time

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration so it can be read from a text value.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if duration < 0 {
		return fmt.Errorf("negative duration [%s]", text)
	}

	d.Duration = duration
	return nil
}

func (d *Duration) ToDuration() time.Duration {
	return d.Duration
}
