//go:build !noimagen

package vertex

import "github.com/mhpenta/genmedia"

var capability = genmedia.Available(NewFactory())

// Capability reports whether Imagen generation is compiled into this binary.
// Builds with the noimagen tag leave out the genai SDK and report Unavailable.
func Capability() genmedia.Capability {
	return capability
}
