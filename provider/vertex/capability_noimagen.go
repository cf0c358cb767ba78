//go:build noimagen

package vertex

import "github.com/mhpenta/genmedia"

var capability = genmedia.Unavailable("google genai SDK not compiled in (built with -tags noimagen)")

// Capability reports whether Imagen generation is compiled into this binary.
func Capability() genmedia.Capability {
	return capability
}
