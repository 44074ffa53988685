package json_test

import (
	"bytes"
	stdjson "encoding/json"
	"testing"

	"github.com/SteakFisher/arazzo-writer/json"
	"github.com/SteakFisher/arazzo-writer/yml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLToJSON_Success(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte(`
name: pets
count: 3
ratio: 0.5
enabled: true
missing: null
tags: [a, b]
quoted: "42"
`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, json.YAMLToJSON(root, 0, &buf))

	var got map[string]any
	require.NoError(t, stdjson.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "pets", got["name"])
	assert.InDelta(t, 3, got["count"], 0)
	assert.InDelta(t, 0.5, got["ratio"], 0)
	assert.Equal(t, true, got["enabled"])
	assert.Nil(t, got["missing"])
	assert.Equal(t, []any{"a", "b"}, got["tags"])
	assert.Equal(t, "42", got["quoted"])
}

func TestToAny_NonScalarKey(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte("? [a, b]\n: value\n"))
	require.NoError(t, err)

	_, err = json.ToAny(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping keys must be scalars")
}
