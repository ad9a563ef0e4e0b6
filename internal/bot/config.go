package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of past exchanges sent to the coach with each message
	HistoryLimit int
	// Long polling timeout in seconds
	UpdateTimeout int
	// Largest goal list accepted by /import
	MaxImportBytes int64
	// How long a pending /setup or /import waits for input
	StateTTL time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		HistoryLimit:   10,
		UpdateTimeout:  60,
		MaxImportBytes: 1 << 20,
		StateTTL:       time.Minute * 15,
	}
}
