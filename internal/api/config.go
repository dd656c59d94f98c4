package api

// Config holds server configuration.
type Config struct {
	Port              int
	RateLimitRequests int      // Requests per minute (0 = disabled)
	RateLimitBurst    int      // Burst size
	AllowedOrigins    []string // CORS and websocket origins (empty = allow all)
	MaxBodyBytes      int64    // Request body limit (0 = DefaultMaxBodyBytes)
}

// DefaultMaxBodyBytes bounds a parse request body.
const DefaultMaxBodyBytes = 64 << 10

func (c Config) maxBody() int64 {
	if c.MaxBodyBytes > 0 {
		return c.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}
