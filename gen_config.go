package genmedia

// Model represents an Imagen model identifier as accepted by the remote service.
type Model string

const (
	ModelImageGeneration006 Model = "imagegeneration@006"
	ModelImagen3            Model = "imagen-3.0-generate-002"
	ModelImagen3Fast        Model = "imagen-3.0-fast-generate-001"
	ModelImagen4Preview     Model = "imagen-4.0-generate-preview-05-20"
	ModelImagen4UltraExp    Model = "imagen-4.0-ultra-generate-exp-05-20"

	ModelDefault Model = ModelImageGeneration006
)

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"
)

// SafetyFilterLevel is the blocking threshold applied by the service.
type SafetyFilterLevel string

const (
	SafetyBlockMediumAndAbove SafetyFilterLevel = "BLOCK_MEDIUM_AND_ABOVE"
	SafetyBlockLowAndAbove    SafetyFilterLevel = "BLOCK_LOW_AND_ABOVE"
	SafetyBlockOnlyHigh       SafetyFilterLevel = "BLOCK_ONLY_HIGH"
	SafetyBlockNone           SafetyFilterLevel = "BLOCK_NONE"
)

// PersonGeneration controls whether people may appear in generated images.
type PersonGeneration string

const (
	PersonAllowAdult PersonGeneration = "ALLOW_ADULT"
	PersonAllowAll   PersonGeneration = "ALLOW_ALL"
	PersonDenyAdult  PersonGeneration = "DENY_ADULT"
)

// Ordered option lists, in the order hosts should present them.
var (
	Models             = []Model{ModelImageGeneration006, ModelImagen3, ModelImagen3Fast, ModelImagen4Preview, ModelImagen4UltraExp}
	AspectRatios       = []AspectRatio{AspectRatio16x9, AspectRatio1x1, AspectRatio9x16, AspectRatio4x3, AspectRatio3x4}
	SafetyFilterLevels = []SafetyFilterLevel{SafetyBlockMediumAndAbove, SafetyBlockLowAndAbove, SafetyBlockOnlyHigh, SafetyBlockNone}
	PersonGenerations  = []PersonGeneration{PersonAllowAdult, PersonAllowAll, PersonDenyAdult}
)

// SeedUnset asks the service to pick a random seed.
const SeedUnset int64 = -1

// Image count bounds accepted per request.
const (
	MinImages = 1
	MaxImages = 4
)

// GenerationRequest holds everything needed for a single text-to-image call.
// It is passed by value; the adapter never modifies it.
type GenerationRequest struct {
	// Project is the Google Cloud project that owns the Vertex AI endpoint.
	Project string

	// Location is the Vertex AI region (e.g. "us-central1").
	Location string

	Model  Model
	Prompt string

	// NumberOfImages to generate (1-4)
	NumberOfImages int

	AspectRatio       AspectRatio
	SafetyFilterLevel SafetyFilterLevel
	PersonGeneration  PersonGeneration

	// Seed for deterministic output; SeedUnset (-1) lets the service choose.
	Seed int64
}

// DefaultRequest returns a request populated with the node's default values.
func DefaultRequest(project, location, prompt string) GenerationRequest {
	return GenerationRequest{
		Project:           project,
		Location:          location,
		Model:             ModelDefault,
		Prompt:            prompt,
		NumberOfImages:    1,
		AspectRatio:       AspectRatio1x1,
		SafetyFilterLevel: SafetyBlockMediumAndAbove,
		PersonGeneration:  PersonAllowAdult,
		Seed:              SeedUnset,
	}
}

// HasSeed reports whether the request pins a seed.
func (r GenerationRequest) HasSeed() bool {
	return r.Seed >= 0
}

// GenerationConfig is the parameter bundle sent alongside the prompt.
type GenerationConfig struct {
	NumberOfImages    int
	AspectRatio       AspectRatio
	SafetyFilterLevel SafetyFilterLevel
	PersonGeneration  PersonGeneration

	// Seed is nil when no seed field should be sent.
	Seed *int64
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}

// String returns the string representation for API calls.
func (a AspectRatio) String() string {
	return string(a)
}

func (s SafetyFilterLevel) String() string {
	return string(s)
}

func (p PersonGeneration) String() string {
	return string(p)
}
