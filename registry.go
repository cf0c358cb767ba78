package genmedia

import (
	"github.com/samber/lo"
)

// Node registry identifiers.
const (
	ImagenNodeID          = "ImagenNode"
	ImagenNodeDisplayName = "Imagen Generator (google-genai)"
	ImagenNodeCategory    = "GoogleGenAI/Imagen"
	ImagenNodeFunction    = "generate_with_imagen"

	// DefaultPrompt is shown in the prompt field of a fresh node.
	DefaultPrompt = "A charming illustration of a cat astronaut floating in space."

	// MissingDependencyHint fills the disabled error field of an unavailable node.
	MissingDependencyHint = "Missing google-genai. Please install."
)

// Environment variables that seed the node's default project and region.
const (
	EnvProject = "GOOGLE_CLOUD_PROJECT"
	EnvRegion  = "GOOGLE_CLOUD_REGION"
)

// InputType is the semantic type of a node input or output.
type InputType string

const (
	TypeString InputType = "STRING"
	TypeInt    InputType = "INT"
	TypeEnum   InputType = "ENUM"
	TypeImage  InputType = "IMAGE"
)

// InputSpec declares one node input.
type InputSpec struct {
	Name      string    `json:"name"`
	Type      InputType `json:"type"`
	Default   any       `json:"default,omitempty"`
	Choices   []string  `json:"choices,omitempty"`
	Min       *int64    `json:"min,omitempty"`
	Max       *int64    `json:"max,omitempty"`
	Multiline bool      `json:"multiline,omitempty"`
	Disabled  bool      `json:"disabled,omitempty"`
}

// OutputSpec declares one node output.
type OutputSpec struct {
	Name string    `json:"name"`
	Type InputType `json:"type"`
}

// InputTypes groups the required and optional inputs of a node.
type InputTypes struct {
	Required []InputSpec `json:"required"`
	Optional []InputSpec `json:"optional,omitempty"`
}

// NodeDefinition is what a host registry needs to offer a node.
type NodeDefinition struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Category    string       `json:"category"`
	Function    string       `json:"function"`
	Input       InputTypes   `json:"input"`
	Outputs     []OutputSpec `json:"outputs"`
}

// Registry maps node ids to their definitions.
type Registry struct {
	Nodes map[string]NodeDefinition `json:"nodes"`
}

// Lookup returns the definition for id.
func (r Registry) Lookup(id string) (NodeDefinition, bool) {
	def, ok := r.Nodes[id]
	return def, ok
}

// BuildRegistry returns the host registry for this process. The Imagen node
// is omitted entirely when the capability is unavailable. lookupEnv is
// typically os.LookupEnv.
func BuildRegistry(capability Capability, lookupEnv func(string) (string, bool)) Registry {
	registry := Registry{Nodes: map[string]NodeDefinition{}}
	if !capability.IsAvailable() {
		return registry
	}
	registry.Nodes[ImagenNodeID] = ImagenNodeDefinition(capability, lookupEnv)
	return registry
}

// ImagenNodeDefinition describes the Imagen node. When the capability is
// unavailable the only input is a disabled "error" field.
func ImagenNodeDefinition(capability Capability, lookupEnv func(string) (string, bool)) NodeDefinition {
	return NodeDefinition{
		ID:          ImagenNodeID,
		DisplayName: ImagenNodeDisplayName,
		Category:    ImagenNodeCategory,
		Function:    ImagenNodeFunction,
		Input:       imagenInputTypes(capability, lookupEnv),
		Outputs: []OutputSpec{
			{Name: "generated_images", Type: TypeImage},
			{Name: "status_text", Type: TypeString},
		},
	}
}

func imagenInputTypes(capability Capability, lookupEnv func(string) (string, bool)) InputTypes {
	if !capability.IsAvailable() {
		return InputTypes{
			Required: []InputSpec{
				{Name: "error", Type: TypeString, Default: MissingDependencyHint, Disabled: true},
			},
		}
	}

	return InputTypes{
		Required: []InputSpec{
			{Name: "project_id", Type: TypeString, Default: envOr(lookupEnv, EnvProject, "your-gcp-project-id")},
			{Name: "location", Type: TypeString, Default: envOr(lookupEnv, EnvRegion, "us-central1")},
			{Name: "model_id", Type: TypeEnum, Default: string(ModelDefault), Choices: toStrings(Models)},
			{Name: "prompt", Type: TypeString, Default: DefaultPrompt, Multiline: true},
			{Name: "number_of_images", Type: TypeInt, Default: MinImages, Min: ptr(int64(MinImages)), Max: ptr(int64(MaxImages))},
			{Name: "aspect_ratio", Type: TypeEnum, Default: string(AspectRatio1x1), Choices: toStrings(AspectRatios)},
			{Name: "safety_filter_level", Type: TypeEnum, Default: string(SafetyBlockMediumAndAbove), Choices: toStrings(SafetyFilterLevels)},
			{Name: "person_generation", Type: TypeEnum, Default: string(PersonAllowAdult), Choices: toStrings(PersonGenerations)},
		},
		Optional: []InputSpec{
			{Name: "seed", Type: TypeInt, Default: SeedUnset, Min: ptr(SeedUnset)},
		},
	}
}

func envOr(lookupEnv func(string) (string, bool), key, fallback string) string {
	if lookupEnv == nil {
		return fallback
	}
	if v, ok := lookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func toStrings[T ~string](values []T) []string {
	return lo.Map(values, func(v T, _ int) string { return string(v) })
}

func ptr[T any](v T) *T {
	return &v
}
