package service

const (
	// DefaultListLimit is used when no other default has been configured.
	DefaultListLimit = 20
	// MaxListLimit is used when no other maximum has been configured.
	MaxListLimit = 100
)

// ClampLimit returns a sane list page size using the provided default and
// maximum. Non-positive values yield the default; values above max clamp
// to max.
func ClampLimit(limit, defaultLimit, max int) int {
	if defaultLimit <= 0 {
		defaultLimit = DefaultListLimit
	}
	if max <= 0 {
		max = defaultLimit
	}
	if limit <= 0 {
		return defaultLimit
	}
	if limit > max {
		return max
	}
	return limit
}
