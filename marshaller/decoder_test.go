package marshaller_test

import (
	"testing"

	"github.com/SteakFisher/arazzo-writer/marshaller"
	"github.com/SteakFisher/arazzo-writer/yml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Object_Fields(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte(`
name: pets
limit: 10
ratio: 1.5
tags: [a, b]
labels:
  z: last
  a: first
x-owner: team
`))
	require.NoError(t, err)

	d := marshaller.NewDecoder()
	o := d.Object(root, "test")
	require.True(t, o.Valid())

	name := marshaller.Field(o, "name", marshaller.String)
	limit := marshaller.Field(o, "limit", marshaller.Int)
	ratio := marshaller.Field(o, "ratio", marshaller.Number)
	tags := marshaller.Field(o, "tags", marshaller.Slice(marshaller.String))
	labels := marshaller.Field(o, "labels", marshaller.Map(marshaller.String))
	missing := marshaller.Field(o, "missing", marshaller.Pointer(marshaller.String))

	assert.Empty(t, d.Errors())
	assert.Equal(t, "pets", name.Value)
	assert.Equal(t, 2, name.KeyNode.Line)
	assert.Equal(t, 10, limit.Value)
	assert.InDelta(t, 1.5, ratio.Value, 0)
	assert.Equal(t, []string{"a", "b"}, tags.Value)
	assert.Equal(t, []string{"z", "a"}, labels.Value.Keys())
	assert.False(t, missing.Present)
	assert.Nil(t, missing.Value)
	assert.Equal(t, root, missing.GetValueNodeOrRoot(root))

	ext := o.Extensions()
	require.Len(t, ext, 1)
	assert.Equal(t, "x-owner", ext[0].Key)
}

func TestDecoder_TypeMismatch(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte(`
name: 12
limit: ten
tags: single
`))
	require.NoError(t, err)

	d := marshaller.NewDecoder()
	o := d.Object(root, "test")
	name := marshaller.Field(o, "name", marshaller.String)
	_ = marshaller.Field(o, "limit", marshaller.Int)
	_ = marshaller.Field(o, "tags", marshaller.Slice(marshaller.String))

	assert.True(t, name.Present)
	assert.Empty(t, name.Value)

	errs := d.Errors()
	require.Len(t, errs, 3)
	assert.Equal(t, "[2:7] error validation-type-mismatch expected string, got scalar (!!int)", errs[0].Error())
	assert.Contains(t, errs[1].Error(), "expected integer")
	assert.Contains(t, errs[2].Error(), "expected array")
}

type names []string

func TestDecoder_SliceOf_KeepsItemNodes(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte(`
tags:
  - 42
  - a
  - [nested]
  - b
`))
	require.NoError(t, err)

	d := marshaller.NewDecoder()
	o := d.Object(root, "test")
	tags := marshaller.Field(o, "tags", marshaller.SliceOf[names](marshaller.String))

	assert.Equal(t, names{"a", "b"}, tags.Value)
	assert.Len(t, d.Errors(), 2)
	assert.Equal(t, 4, tags.GetSliceValueNodeOrRoot(0, root).Line)
	assert.Equal(t, 6, tags.GetSliceValueNodeOrRoot(1, root).Line)
	assert.Equal(t, tags.ValueNode, tags.GetSliceValueNodeOrRoot(2, root))
}

func TestDecoder_NotAnObject(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte("- a\n- b\n"))
	require.NoError(t, err)

	d := marshaller.NewDecoder()
	o := d.Object(root, "info")
	assert.False(t, o.Valid())
	assert.False(t, marshaller.Field(o, "title", marshaller.String).Present)

	require.Len(t, d.Errors(), 1)
	assert.Contains(t, d.Errors()[0].Error(), "expected object for info, got sequence")
}

func TestDecoder_DuplicateKey(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte("a: 1\nb: 2\na: 3\n"))
	require.NoError(t, err)

	d := marshaller.NewDecoder()
	d.Object(root, "test")

	require.Len(t, d.Errors(), 1)
	assert.Contains(t, d.Errors()[0].Error(), `duplicate key "a" (first defined at line 1)`)
}

func TestObject_Known_WarnsOnUnknownFields(t *testing.T) {
	t.Parallel()

	root, err := yml.Parse([]byte("name: pets\nnmae: typo\nx-extra: true\n"))
	require.NoError(t, err)

	d := marshaller.NewDecoder()
	o := d.Object(root, "test")
	o.Known("name")

	errs := d.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "[2:1] warning validation-unknown-field unknown field \"nmae\"", errs[0].Error())
}
