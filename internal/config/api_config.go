package config

import (
	"time"

	"github.com/c2h5oh/datasize"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL is the origin and path prefix of the REST API
func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://127.0.0.1:8000/api/v1/")
}

func (API) GetPageSize() int {
	size := getIntEnv("PAGE_SIZE", 2)
	if size <= 0 {
		return 2
	}
	return size
}

// GetAPITimeout returns zero, meaning the transport default, unless API_TIMEOUT is set
func (API) GetAPITimeout() time.Duration {
	return getDurationEnv("API_TIMEOUT", 0)
}

func (API) GetAPIMaxResponseSize() datasize.ByteSize {
	return getSizeEnv("API_MAX_RESPONSE_SIZE", 4*datasize.MB)
}
