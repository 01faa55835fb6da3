package driven

// ConfigStore holds repair settings under dotted keys such as
// "repair.concurrency" or "stages.nv-ids.include_layouts".
// Getters never fail: a missing key or a value of another type yields the
// zero value, and callers apply their own defaults.
type ConfigStore interface {
	// Get returns the raw value stored under key.
	Get(key string) (any, bool)

	// GetString returns the string under key, or "".
	GetString(key string) string

	// GetInt returns the integer under key, or 0. Whole floats count.
	GetInt(key string) int

	// GetBool returns the boolean under key, or false.
	GetBool(key string) bool

	// GetStringSlice returns a copy of the list under key, or nil.
	GetStringSlice(key string) []string

	// Set stores value under key and persists it. A failed write leaves
	// the previous value in place.
	Set(key string, value any) error

	// Save writes every value to storage.
	Save() error

	// Load replaces the in-memory values with what storage holds.
	Load() error

	// Path returns where the values are persisted.
	Path() string
}
