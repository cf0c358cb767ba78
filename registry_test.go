package genmedia

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func availableCapability() Capability {
	return Available(func(context.Context, string, string) (ImageService, error) {
		return &MockImageService{}, nil
	})
}

func TestBuildRegistry_Available(t *testing.T) {
	registry := BuildRegistry(availableCapability(), envMap(map[string]string{
		EnvProject: "my-project",
		EnvRegion:  "europe-west4",
	}))

	def, ok := registry.Lookup(ImagenNodeID)
	require.True(t, ok)
	assert.Equal(t, ImagenNodeDisplayName, def.DisplayName)
	assert.Equal(t, ImagenNodeCategory, def.Category)

	inputs := map[string]InputSpec{}
	for _, in := range def.Input.Required {
		inputs[in.Name] = in
	}
	assert.Equal(t, "my-project", inputs["project_id"].Default)
	assert.Equal(t, "europe-west4", inputs["location"].Default)
	assert.Equal(t, "imagegeneration@006", inputs["model_id"].Default)
	assert.Len(t, inputs["model_id"].Choices, 5)
	assert.True(t, inputs["prompt"].Multiline)
	assert.Equal(t, int64(1), *inputs["number_of_images"].Min)
	assert.Equal(t, int64(4), *inputs["number_of_images"].Max)
	assert.Equal(t, []string{"16:9", "1:1", "9:16", "4:3", "3:4"}, inputs["aspect_ratio"].Choices)
	assert.Len(t, inputs["safety_filter_level"].Choices, 4)
	assert.Len(t, inputs["person_generation"].Choices, 3)

	require.Len(t, def.Input.Optional, 1)
	assert.Equal(t, "seed", def.Input.Optional[0].Name)
	assert.Equal(t, SeedUnset, def.Input.Optional[0].Default)

	require.Len(t, def.Outputs, 2)
	assert.Equal(t, TypeImage, def.Outputs[0].Type)
	assert.Equal(t, TypeString, def.Outputs[1].Type)
}

func TestBuildRegistry_EnvFallbacks(t *testing.T) {
	registry := BuildRegistry(availableCapability(), envMap(nil))

	def, ok := registry.Lookup(ImagenNodeID)
	require.True(t, ok)
	assert.Equal(t, "your-gcp-project-id", def.Input.Required[0].Default)
	assert.Equal(t, "us-central1", def.Input.Required[1].Default)
}

func TestBuildRegistry_Unavailable(t *testing.T) {
	capability := Unavailable("built without genai")

	registry := BuildRegistry(capability, envMap(nil))
	_, ok := registry.Lookup(ImagenNodeID)
	assert.False(t, ok, "unavailable node must not be offered")
	assert.Empty(t, registry.Nodes)

	def := ImagenNodeDefinition(capability, envMap(nil))
	require.Len(t, def.Input.Required, 1)
	assert.Equal(t, "error", def.Input.Required[0].Name)
	assert.True(t, def.Input.Required[0].Disabled)
	assert.Equal(t, MissingDependencyHint, def.Input.Required[0].Default)
	assert.Empty(t, def.Input.Optional)
}

func TestCapability(t *testing.T) {
	assert.True(t, availableCapability().IsAvailable())
	assert.Empty(t, availableCapability().Reason())

	nilFactory := Available(nil)
	assert.False(t, nilFactory.IsAvailable())
	assert.NotEmpty(t, nilFactory.Reason())

	off := Unavailable("missing")
	assert.False(t, off.IsAvailable())
	assert.Nil(t, off.Factory())
	assert.Equal(t, "missing", off.Reason())
}
