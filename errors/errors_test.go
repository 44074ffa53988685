package errors_test

import (
	"fmt"
	"testing"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/stretchr/testify/assert"
)

const errSentinel = errors.Error("sentinel failure")

func TestError_Is_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "same sentinel", err: errSentinel, target: errSentinel, want: true},
		{name: "wrapped sentinel", err: errSentinel.Wrap(errors.New("boom")), target: errSentinel, want: true},
		{name: "wrapped with fmt", err: fmt.Errorf("outer: %w", errSentinel.Wrapf("file %s", "a.yaml")), target: errSentinel, want: true},
		{name: "different sentinel", err: errSentinel, target: errors.Error("other"), want: false},
		{name: "prefix without separator", err: errors.New("sentinel failure and more"), target: errSentinel, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestError_Wrap_Message(t *testing.T) {
	t.Parallel()

	err := errSentinel.Wrap(errors.New("boom"))
	assert.Equal(t, "sentinel failure -- boom", err.Error())
	assert.Equal(t, "sentinel failure", errSentinel.Wrap(nil).Error())
}

func TestUnwrapErrors(t *testing.T) {
	t.Parallel()

	a := errors.New("a")
	b := errors.New("b")

	assert.Equal(t, []error{a, b}, errors.UnwrapErrors(errors.Join(a, b)))
	assert.Equal(t, []error{a}, errors.UnwrapErrors(a))
	assert.Nil(t, errors.UnwrapErrors(nil))
}
