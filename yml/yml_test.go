package yml_test

import (
	"testing"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/yml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse_Success(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte("a: 1\nb:\n  - x\n  - y\n"))
	require.NoError(t, err)
	assert.Equal(t, yaml.MappingNode, root.Kind)

	keyNode, valueNode, ok := yml.GetMapElement(root, "b")
	require.True(t, ok)
	assert.Equal(t, 2, keyNode.Line)
	assert.Len(t, yml.Items(valueNode), 2)
}

func TestParse_Error(t *testing.T) {
	t.Parallel()

	_, err := yml.Parse([]byte(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, yml.ErrEmptyDocument))

	_, err = yml.Parse([]byte("a: [1, 2\n"))
	require.Error(t, err)
}

func TestParse_MultipleDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		sentinel error
		contains string
	}{
		{
			name:     "malformed second document",
			data:     "arazzo: 1.0.1\n---\nfoo: [unclosed\n",
			contains: "line",
		},
		{
			name:     "valid second document",
			data:     "arazzo: 1.0.1\n---\nfoo: bar\n",
			sentinel: yml.ErrMultipleDocuments,
			contains: "another document starts at line 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root, err := yml.Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, root)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestMapPairs_ResolvesAliases(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte("base: &b {x: 1}\ncopy: *b\n"))
	require.NoError(t, err)

	var keys []string
	for k, v := range yml.MapPairs(root) {
		keys = append(keys, k.Value)
		assert.Equal(t, yaml.MappingNode, v.Kind)
	}
	assert.Equal(t, []string{"base", "copy"}, keys)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte("n: 5\n"))
	require.NoError(t, err)
	_, v, _ := yml.GetMapElement(root, "n")

	assert.Equal(t, "scalar (!!int)", yml.Describe(v))
	assert.Equal(t, "mapping", yml.Describe(root))
	assert.Equal(t, "nothing", yml.Describe(nil))
}
