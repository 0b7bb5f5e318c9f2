package utils

// Context keys propagated from the HTTP layer into flows for logging.
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
)

// Matching defaults. The radius values are kilometers.
const (
	// DefaultRadiusKm is the standard proximity radius (500 m).
	DefaultRadiusKm = 0.5

	// TightRadiusKm is the eager re-scan radius applied when a profile
	// re-enables matching consent (10 m).
	TightRadiusKm = 0.01

	// LatitudeMin et al. bound acceptable coordinates at the API boundary.
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

// CORSMaxAge is the preflight cache lifetime in seconds.
const CORSMaxAge = 86400

// Cache key fragments used with the redis client.
const (
	MatchableCountCacheKey = "matchable_count"
)
