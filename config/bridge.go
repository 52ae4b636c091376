package config

import (
	"errors"
	"fmt"
	"time"
)

// Bridge holds the settings an editor passes when it asks for a connection
// to the language-server bridge.
type Bridge struct {
	Host       string `toml:"host"`
	ServerPort int    `toml:"server_port"`

	// MaxTries is the number of retries after the first attempt.
	MaxTries   int      `toml:"max_tries"`
	RetryDelay Duration `toml:"retry_delay"`

	// ReleaseMode asks for a bundled bridge process to be launched first.
	// Launching is handled outside this module.
	ReleaseMode bool `toml:"release_mode"`
}

// Defaults returns the settings used when no config file is present.
func Defaults() Bridge {
	return Bridge{
		Host:       "localhost",
		ServerPort: 8888,
		MaxTries:   10,
		RetryDelay: Duration(time.Second),
	}
}

func (b *Bridge) Validate() error {
	var errs []error
	if b.Host == "" {
		errs = append(errs, errors.New("host must not be empty"))
	}
	if b.ServerPort < 1 || b.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("server_port %d out of range", b.ServerPort))
	}
	if b.MaxTries < 0 {
		errs = append(errs, fmt.Errorf("max_tries %d must not be negative", b.MaxTries))
	}
	if b.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry_delay %s must not be negative", b.RetryDelay))
	}
	return errors.Join(errs...)
}

// Duration is a time.Duration written as a string ("500ms", "2s") in TOML.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
