package cache

// Keyer derives cache keys. Keys hash their inputs so that arbitrary TeX
// never reaches a backend verbatim.
type Keyer interface {
	// RenderKey generates a key for a rendering of tex by the named backend.
	RenderKey(backend, tex string) string
}

// DefaultKeyer produces keys of the form "render:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(backend, tex string) string {
	return hashKey("render", backend, tex)
}
