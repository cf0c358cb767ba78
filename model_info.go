package genmedia

// ModelCapabilities describes which configuration fields a model accepts.
type ModelCapabilities struct {
	// SupportsSeed is false when the model's config schema has no seed field.
	SupportsSeed bool

	// MaxOutputImages generated per request
	MaxOutputImages int
}

// ImageConstraints defines supported image configurations for a model.
type ImageConstraints struct {
	SupportedAspectRatios []AspectRatio
}

// ModelInfo contains metadata for a model exposed by an ImageService.
type ModelInfo struct {
	Name        Model
	DisplayName string

	Capabilities     ModelCapabilities
	ImageConstraints ImageConstraints
}

// FindModel returns the info for name from models.
func FindModel(models []ModelInfo, name Model) (ModelInfo, bool) {
	for _, info := range models {
		if info.Name == name {
			return info, true
		}
	}
	return ModelInfo{}, false
}
