package config

import (
	"time"

	"github.com/c2h5oh/datasize"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetPageSize() int
	GetAPITimeout() time.Duration
	GetAPIMaxResponseSize() datasize.ByteSize
}

type SessionConfig interface {
	GetSessionBackend() SessionBackend
	GetRedisURL() string
	GetSessionTTL() time.Duration
	GetSessionFile() string
	GetViewTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Session
}

func New() Config {
	return mainConfig{}
}
