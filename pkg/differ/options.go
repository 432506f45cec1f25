package differ

// Option is a functional option for configuring a Differ
type Option func(*Differ)

// WithIgnoredFields sets fields to ignore during comparison
func WithIgnoredFields(fields ...string) Option {
	return func(d *Differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithVersions reports Windows versions missing from the known definitions
func WithVersions(enabled bool) Option {
	return func(d *Differ) {
		d.versions = enabled
	}
}
