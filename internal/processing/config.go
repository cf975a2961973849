package processing

import "time"

// Config holds connection settings for the processing service.
type Config struct {
	Endpoint      string
	Timeout       time.Duration // auth, history and download calls
	UploadTimeout time.Duration // marksheet upload including server-side extraction
}

// DefaultConfig returns a Config for a local development server.
func DefaultConfig() Config {
	return Config{
		Endpoint:      "http://localhost:5000",
		Timeout:       10 * time.Second,
		UploadTimeout: 2 * time.Minute,
	}
}
