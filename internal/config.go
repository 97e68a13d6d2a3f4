package internal

import (
	"time"
)

// Config is the environment surface of the server. Capacity and typing
// expiry are deployment knobs: the hardened profile ships
// MESSAGE_LOG_CAPACITY=50 and disables the stats endpoint instead of
// carrying different code.
type Config struct {
	Host     string `env:"HOST,required=true"`
	Port     int    `env:"PORT,required=true"`
	LogLevel string `env:"LOG_LEVEL,required=true"`

	BufferSize           int `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int `env:"CONNECTION_BUFFER_SIZE,default=256"`

	MessageLogCapacity int           `env:"MESSAGE_LOG_CAPACITY,default=100"`
	TypingExpiry       time.Duration `env:"TYPING_EXPIRY,default=2s"`

	MaxDisplayNameLength int `env:"MAX_DISPLAY_NAME_LENGTH,default=24"`
	MaxRoomNameLength    int `env:"MAX_ROOM_NAME_LENGTH,default=32"`
	MaxMessageLength     int `env:"MAX_MESSAGE_LENGTH,default=500"`

	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	StatsEnabled bool `env:"STATS_ENABLED,default=true"`
	StatsPort    int  `env:"STATS_PORT,default=8090"`
}
