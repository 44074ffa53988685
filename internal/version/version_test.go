package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseVersion_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version string
		want    Version
	}{
		{name: "arazzo 1.0.1", version: "1.0.1", want: Version{Major: 1, Minor: 0, Patch: 1}},
		{name: "zero version", version: "0.0.0", want: Version{}},
		{name: "multi digit", version: "10.20.30", want: Version{Major: 10, Minor: 20, Patch: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := ParseVersion(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *v)
			assert.Equal(t, tt.version, v.String())
		})
	}
}

func Test_ParseVersion_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version string
		wantErr string
	}{
		{name: "too few parts", version: "1.0", wantErr: "invalid version 1.0"},
		{name: "too many parts", version: "1.0.0.1", wantErr: "invalid version 1.0.0.1"},
		{name: "non numeric minor", version: "1.x.0", wantErr: "invalid minor version x"},
		{name: "negative patch", version: "1.0.-1", wantErr: "invalid patch version -1: cannot be negative"},
		{name: "empty", version: "", wantErr: "invalid version "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseVersion(tt.version)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	t.Parallel()

	v := Version{Major: 1, Minor: 0, Patch: 1}
	assert.Equal(t, 0, v.Compare(Version{Major: 1, Minor: 0, Patch: 1}))
	assert.Equal(t, 1, v.Compare(Version{Major: 1, Minor: 0, Patch: 0}))
	assert.Equal(t, -1, v.Compare(Version{Major: 1, Minor: 1, Patch: 0}))
	assert.Equal(t, -1, v.Compare(Version{Major: 2}))
}
