package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"chapsplit/internal/failure"
)

func (c *Config) normalize() error {
	if err := c.normalizeTools(); err != nil {
		return err
	}
	if err := c.normalizeSplit(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeTools() error {
	if value, ok := os.LookupEnv("CHAPSPLIT_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFmpeg = value
	}
	if value, ok := os.LookupEnv("CHAPSPLIT_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFprobe = value
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	return nil
}

func (c *Config) normalizeSplit() error {
	if value, ok := os.LookupEnv("CHAPSPLIT_JOBS"); ok && strings.TrimSpace(value) != "" {
		jobs, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: CHAPSPLIT_JOBS: %q is not an integer", failure.ErrConfiguration, value)
		}
		c.Split.Jobs = jobs
	}
	c.Split.OutputExtension = NormalizeExtension(c.Split.OutputExtension)
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("%w: history.path: %w", failure.ErrConfiguration, err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" || c.Logging.Format == "text" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// NormalizeExtension trims whitespace and a single leading dot, so ".mp3",
// "mp3" and " mp3 " are equivalent.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	return strings.TrimPrefix(ext, ".")
}
