package stats

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithEventDistance sets the distance of a single event in kilometers.
// Non-positive values are ignored.
func WithEventDistance(km float64) Option {
	return func(e *Engine) {
		if km > 0 {
			e.eventDistance = km
		}
	}
}
