package config

const (
	defaultBaseURL               = "https://dashboard.meraki.com/api/v0"
	defaultRequestTimeoutSeconds = 30
	defaultUserAgent             = "merakireboot/0.1.0"
	defaultStateDir              = "~/.local/share/merakireboot"
	defaultHistoryFile           = "history.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "warn"
	defaultNotifyTimeoutSeconds  = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultBaseURL,
			RequestTimeout: defaultRequestTimeoutSeconds,
			UserAgent:      defaultUserAgent,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeoutSeconds,
		},
	}
}
