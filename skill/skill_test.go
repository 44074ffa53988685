package skill_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/SteakFisher/arazzo-writer/arazzo"
	"github.com/SteakFisher/arazzo-writer/skill"
	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Success(t *testing.T) {
	t.Parallel()

	s, err := skill.Load()
	require.NoError(t, err)

	assert.Equal(t, "arazzo-writer", s.Name)
	assert.Contains(t, s.Description, "Arazzo 1.0")
	assert.NotContains(t, s.Body, "---\nname:")
	assert.Contains(t, s.Body, "# Writing Arazzo workflows")

	var names, titles []string
	for _, d := range s.Documents() {
		names = append(names, d.Name)
		titles = append(titles, d.Title)
		assert.Positive(t, d.Size)
	}
	assert.Equal(t, []string{
		"SKILL.md",
		"examples/pet-adoption.arazzo.yaml",
		"references/runtime-expressions.md",
		"references/validation.md",
	}, names)
	assert.Equal(t, []string{
		"Writing Arazzo workflows",
		"pet-adoption.arazzo.yaml",
		"Runtime expressions",
		"Validation",
	}, titles)
}

func TestLoad_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bundle  fstest.MapFS
		wantErr error
	}{
		{
			name:    "missing frontmatter",
			bundle:  fstest.MapFS{"SKILL.md": {Data: []byte("# Title\n")}},
			wantErr: skill.ErrMissingMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := skill.Load(skill.WithBundle(tt.bundle))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSkill_Headings(t *testing.T) {
	t.Parallel()

	s, err := skill.Load()
	require.NoError(t, err)

	headings, err := s.Headings("references/validation.md")
	require.NoError(t, err)

	assert.Equal(t, []skill.Heading{
		{Level: 1, Text: "Validation"},
		{Level: 2, Text: "Usage"},
		{Level: 2, Text: "Exit codes"},
		{Level: 2, Text: "Reading findings"},
		{Level: 2, Text: "External validator"},
		{Level: 2, Text: "Dry-running criteria"},
	}, headings)
}

func TestSkill_Read_Error(t *testing.T) {
	t.Parallel()

	s, err := skill.Load()
	require.NoError(t, err)

	_, err = s.Read("references/missing.md")
	require.ErrorIs(t, err, skill.ErrDocumentNotFound)

	_, err = s.Read("../go.mod")
	require.ErrorIs(t, err, skill.ErrDocumentNotFound)
}

func TestSkill_Check_Success(t *testing.T) {
	t.Parallel()

	s, err := skill.Load()
	require.NoError(t, err)

	assert.Empty(t, s.Check(context.Background()))
}

func TestSkill_Check_Error(t *testing.T) {
	t.Parallel()

	bundle := fstest.MapFS{
		"SKILL.md": {Data: []byte(`---
name: Arazzo Writer
description: Writes Arazzo.
---

# Arazzo

See [expressions](references/expressions.md) and [Arazzo 1.0](https://spec.openapis.org/arazzo/latest.html).
`)},
		"examples/broken.arazzo.yaml": {Data: []byte("arazzo: 2.0.0\n")},
	}

	s, err := skill.Load(skill.WithBundle(bundle))
	require.NoError(t, err)

	errs := s.Check(context.Background())
	require.NotEmpty(t, errs)

	assert.ErrorIs(t, errs[0], skill.ErrInvalidSkill)
	assert.Contains(t, errs[0].Error(), `name "Arazzo Writer" must match`)
	assert.ErrorIs(t, errs[1], skill.ErrInvalidSkill)
	assert.Contains(t, errs[1].Error(), "SKILL.md links to references/expressions.md which is not part of the bundle")
	assert.Contains(t, errs[2].Error(), "examples/broken.arazzo.yaml:")
}

func TestSkill_Install(t *testing.T) {
	t.Parallel()

	out := system.NewMemFS(nil)
	s, err := skill.Load(skill.WithOutputFS(out))
	require.NoError(t, err)

	written, err := s.Install(context.Background(), "/home/user/.skills", false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/home/user/.skills/arazzo-writer/SKILL.md",
		"/home/user/.skills/arazzo-writer/examples/pet-adoption.arazzo.yaml",
		"/home/user/.skills/arazzo-writer/references/runtime-expressions.md",
		"/home/user/.skills/arazzo-writer/references/validation.md",
	}, written)

	data, err := out.ReadFile("/home/user/.skills/arazzo-writer/SKILL.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: arazzo-writer")

	_, err = s.Install(context.Background(), "/home/user/.skills", false)
	require.ErrorIs(t, err, skill.ErrFileExists)

	written, err = s.Install(context.Background(), "/home/user/.skills", true)
	require.NoError(t, err)
	assert.Len(t, written, 4)
}

func TestSkill_DocumentSkeletonIsValid(t *testing.T) {
	t.Parallel()

	s, err := skill.Load()
	require.NoError(t, err)

	data, err := s.Read("SKILL.md")
	require.NoError(t, err)

	_, section, ok := strings.Cut(string(data), "## Document skeleton")
	require.True(t, ok)
	_, block, ok := strings.Cut(section, "```yaml\n")
	require.True(t, ok)
	skeleton, _, ok := strings.Cut(block, "```")
	require.True(t, ok)

	_, validationErrs, err := arazzo.Unmarshal(context.Background(), strings.NewReader(skeleton))
	require.NoError(t, err)
	assert.Zero(t, validation.CountBySeverity(validationErrs, validation.SeverityError), validationErrs)
}
