package config

const (
	defaultConfigPath     = "~/.config/chapsplit/config.toml"
	projectConfigName     = "chapsplit.toml"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultHistoryPath    = "~/.local/share/chapsplit/history.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultHistoryEnabled = true
	defaultUseTitleAsName = true
	defaultUseTitleInMeta = true
	defaultSanitizeTitles = true
	defaultKillOnCancel   = true
	maxJobs               = 256
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Split: Split{
			UseTitleAsName: defaultUseTitleAsName,
			UseTitleInMeta: defaultUseTitleInMeta,
			SanitizeTitles: defaultSanitizeTitles,
			KillOnCancel:   defaultKillOnCancel,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
