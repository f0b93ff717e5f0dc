package config

import (
	"fmt"
	"strings"

	"chapsplit/internal/failure"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSplit() error {
	if c.Split.Jobs < 0 {
		return fmt.Errorf("%w: split.jobs must be >= 0, got %d", failure.ErrConfiguration, c.Split.Jobs)
	}
	if c.Split.Jobs > maxJobs {
		return fmt.Errorf("%w: split.jobs must be <= %d, got %d", failure.ErrConfiguration, maxJobs, c.Split.Jobs)
	}
	if strings.ContainsAny(c.Split.OutputExtension, `/\`) {
		return fmt.Errorf("%w: split.output_extension %q must not contain path separators", failure.ErrConfiguration, c.Split.OutputExtension)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: logging.format %q is not one of console, json", failure.ErrConfiguration, c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	case "":
		return fmt.Errorf("%w: logging.level must be set", failure.ErrConfiguration)
	default:
		return fmt.Errorf("%w: logging.level %q is not one of debug, info, warn, error", failure.ErrConfiguration, c.Logging.Level)
	}
}
