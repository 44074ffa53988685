package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	entry := FromContext(context.Background())
	require.NotNil(t, entry)
	assert.Same(t, L.Logger, entry.Logger)
}

func TestWithFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	applyFormat(l, "json")

	ctx := WithLogger(context.Background(), logrus.NewEntry(l))
	ctx = WithFields(ctx, logrus.Fields{"stage": "syntax"})

	G(ctx).Debug("stage started")

	assert.Contains(t, buf.String(), `"stage":"syntax"`)
	assert.Contains(t, buf.String(), `"message":"stage started"`)
}

func TestConfigure_Error(t *testing.T) {
	t.Parallel()

	err := Configure("loud", "text")
	assert.Error(t, err)
}
