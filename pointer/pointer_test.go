package pointer_test

import (
	"testing"

	"github.com/SteakFisher/arazzo-writer/pointer"
	"github.com/stretchr/testify/assert"
)

func TestFrom_Success(t *testing.T) {
	t.Parallel()

	s := pointer.From("petstore")
	assert.Equal(t, "petstore", *s)

	n := 3
	p := pointer.From(n)
	n = 4
	assert.Equal(t, 3, *p, "pointer should reference a copy")
}

func TestValueOrZero_Success(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", pointer.ValueOrZero[string](nil))
	assert.Equal(t, 0, pointer.ValueOrZero[int](nil))
	assert.Equal(t, "x", pointer.ValueOrZero(pointer.From("x")))
}
