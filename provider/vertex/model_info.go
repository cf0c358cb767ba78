package vertex

import "github.com/mhpenta/genmedia"

var allAspectRatios = []genmedia.AspectRatio{
	genmedia.AspectRatio1x1,
	genmedia.AspectRatio16x9,
	genmedia.AspectRatio9x16,
	genmedia.AspectRatio4x3,
	genmedia.AspectRatio3x4,
}

// ImageGeneration006Info is the publisher model that nodes default to.
var ImageGeneration006Info = genmedia.ModelInfo{
	Name:        genmedia.ModelImageGeneration006,
	DisplayName: "Imagen 2",

	Capabilities: genmedia.ModelCapabilities{
		SupportsSeed:    true,
		MaxOutputImages: 4,
	},
	ImageConstraints: genmedia.ImageConstraints{SupportedAspectRatios: allAspectRatios},
}

var Imagen3Info = genmedia.ModelInfo{
	Name:        genmedia.ModelImagen3,
	DisplayName: "Imagen 3",

	Capabilities: genmedia.ModelCapabilities{
		SupportsSeed:    true,
		MaxOutputImages: 4,
	},
	ImageConstraints: genmedia.ImageConstraints{SupportedAspectRatios: allAspectRatios},
}

var Imagen3FastInfo = genmedia.ModelInfo{
	Name:        genmedia.ModelImagen3Fast,
	DisplayName: "Imagen 3 Fast",

	Capabilities: genmedia.ModelCapabilities{
		SupportsSeed:    true,
		MaxOutputImages: 4,
	},
	ImageConstraints: genmedia.ImageConstraints{SupportedAspectRatios: allAspectRatios},
}

// Imagen4PreviewInfo is a preview model; availability varies by region.
var Imagen4PreviewInfo = genmedia.ModelInfo{
	Name:        genmedia.ModelImagen4Preview,
	DisplayName: "Imagen 4 (preview)",

	Capabilities: genmedia.ModelCapabilities{
		SupportsSeed:    true,
		MaxOutputImages: 4,
	},
	ImageConstraints: genmedia.ImageConstraints{SupportedAspectRatios: allAspectRatios},
}

// Imagen4UltraExpInfo is experimental and only returns one image per call.
var Imagen4UltraExpInfo = genmedia.ModelInfo{
	Name:        genmedia.ModelImagen4UltraExp,
	DisplayName: "Imagen 4 Ultra (experimental)",

	Capabilities: genmedia.ModelCapabilities{
		SupportsSeed:    true,
		MaxOutputImages: 1,
	},
	ImageConstraints: genmedia.ImageConstraints{SupportedAspectRatios: allAspectRatios},
}

// Models returns every model this provider knows, default first.
func Models() []genmedia.ModelInfo {
	return []genmedia.ModelInfo{
		ImageGeneration006Info,
		Imagen3Info,
		Imagen3FastInfo,
		Imagen4PreviewInfo,
		Imagen4UltraExpInfo,
	}
}
