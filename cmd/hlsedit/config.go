package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// config holds the settings shared by all commands. Values come from the
// defaults, then the optional TOML file, then the command line.
type config struct {
	Format string  `toml:"format" validate:"oneof=text yaml json"`
	Level  string  `toml:"level" validate:"oneof=debug info warn error fatal"`
	Base   string  `toml:"base" validate:"omitempty,uri"`
	Keep   float64 `toml:"keep" validate:"gte=0"`
}

var defaults = config{
	Format: "text",
	Level:  "info",
	Keep:   60,
}

var check = validator.New()

// loadConfig returns the defaults overlaid with the file at path. An empty
// path returns the defaults. Unknown keys are an error.
func loadConfig(path string) (config, error) {
	conf := defaults
	if path == "" {
		return conf, nil
	}
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return conf, fmt.Errorf("config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return conf, fmt.Errorf("config: %s: unknown keys: %s", path, strings.Join(names, ", "))
	}
	return conf, nil
}

func (c config) validate() error {
	if err := check.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
