package ui

// Config contains TUI-specific configuration.
type Config struct {
	// ShareBaseURL is the address share links point at.
	ShareBaseURL string

	// RemoteAPIKey enables the remote neural backend when set.
	RemoteAPIKey string `env:"SPELLDRILL_API_KEY"`

	// For debugging the UI.
	Debug   bool   `env:"SPELLDRILL_DEBUG"`
	Logfile string `env:"SPELLDRILL_LOGFILE"`
}
