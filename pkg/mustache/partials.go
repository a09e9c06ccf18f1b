package mustache

// Partials supplies partial templates to the renderer. Resolution must be
// synchronous; ok is false when the name is unknown, in which case the
// partial tag renders as nothing.
type Partials interface {
	Resolve(name string) (text string, ok bool)
}

// PartialMap is an in-memory Partials implementation. When a plain name is
// absent, the renderer additionally probes the map for the name followed by
// the current closing delimiter, a legacy key format some callers still
// produce.
type PartialMap map[string]string

// Resolve returns the partial stored under name.
func (m PartialMap) Resolve(name string) (string, bool) {
	text, ok := m[name]
	return text, ok
}

// PartialFunc adapts a lookup function to the Partials interface.
type PartialFunc func(name string) (string, bool)

// Resolve calls f.
func (f PartialFunc) Resolve(name string) (string, bool) {
	return f(name)
}
