package genmedia

// Capability describes whether the image generation client is usable in this
// process. It is computed once at start-up by the provider package and
// consulted by both the adapter and the registry builder.
type Capability struct {
	factory ClientFactory
	reason  string
}

// Available returns a capability that builds clients with factory.
func Available(factory ClientFactory) Capability {
	if factory == nil {
		return Unavailable("no client factory configured")
	}
	return Capability{factory: factory}
}

// Unavailable returns a capability that reports reason on every use.
func Unavailable(reason string) Capability {
	return Capability{reason: reason}
}

// IsAvailable reports whether clients can be built.
func (c Capability) IsAvailable() bool {
	return c.factory != nil
}

// Reason explains why the capability is unavailable. Empty when available.
func (c Capability) Reason() string {
	return c.reason
}

// Factory returns the client factory, or nil when unavailable.
func (c Capability) Factory() ClientFactory {
	return c.factory
}
