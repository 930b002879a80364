package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeImagesPrefersImagesField(t *testing.T) {
	p := ImagePayload{
		Images:        []ImageRef{{URL: "https://cdn.shirtso.dev/a.jpg", Primary: true}},
		ImageMappings: []ImageRef{{URL: "https://cdn.shirtso.dev/b.jpg"}},
	}
	out := NormalizeImages(p)
	require.Len(t, out, 1)
	assert.Equal(t, "https://cdn.shirtso.dev/a.jpg", out[0].URL)
	assert.True(t, out[0].Primary)
}

func TestNormalizeImagesFallsBackToMappings(t *testing.T) {
	p := ImagePayload{
		ImageMappings: []ImageRef{
			{URL: "https://cdn.shirtso.dev/b.jpg", Alt: "back"},
		},
	}
	out := NormalizeImages(p)
	require.Len(t, out, 1)
	assert.Equal(t, "back", out[0].Alt)
}

func TestNormalizeImagesDropsBlanksAndDuplicates(t *testing.T) {
	p := ImagePayload{
		Images: []ImageRef{
			{URL: "  "},
			{URL: "https://cdn.shirtso.dev/a.jpg"},
			{URL: " https://cdn.shirtso.dev/a.jpg "},
			{URL: "https://cdn.shirtso.dev/c.jpg"},
		},
	}
	out := NormalizeImages(p)
	require.Len(t, out, 2)
	assert.Equal(t, "https://cdn.shirtso.dev/a.jpg", out[0].URL)
	assert.Equal(t, "https://cdn.shirtso.dev/c.jpg", out[1].URL)
}

func TestNormalizeImagesEmptyPayload(t *testing.T) {
	assert.Empty(t, NormalizeImages(ImagePayload{}))
}

func TestImagePayloadDecodesBothWireShapes(t *testing.T) {
	var legacy ImagePayload
	require.NoError(t, json.Unmarshal([]byte(`{"images":[{"url":"https://x/a.jpg"}]}`), &legacy))
	require.Len(t, NormalizeImages(legacy), 1)

	var current ImagePayload
	require.NoError(t, json.Unmarshal([]byte(`{"imageMappings":[{"url":"https://x/b.jpg","primary":true}]}`), &current))
	out := NormalizeImages(current)
	require.Len(t, out, 1)
	assert.True(t, out[0].Primary)
}
