package arazzo

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SteakFisher/arazzo-writer/arazzo"
	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/commands/cmdutil"
	"github.com/SteakFisher/arazzo-writer/errors"
)

// maxReportedWarnings limits how many findings commands other than validate print before continuing.
const maxReportedWarnings = 5

// loadDocument loads an Arazzo document from a file or stdin (using "-").
// Validation findings are reported to stderr as warnings; only failures to read or parse are returned.
func loadDocument(ctx context.Context, file string, stdin io.Reader, stderr io.Writer) (*arazzo.Arazzo, error) {
	var reader io.ReadCloser

	if cmdutil.IsStdin(file) {
		reader = io.NopCloser(stdin)
	} else {
		f, err := os.Open(filepath.Clean(file))
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		reader = f
	}
	defer reader.Close()

	doc, validationErrors, err := arazzo.Unmarshal(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal Arazzo document: %w", err)
	}
	if doc == nil {
		return nil, errors.New("failed to parse Arazzo document: document is nil")
	}

	if len(validationErrors) > 0 {
		fmt.Fprintf(stderr, "⚠️  Found %d validation errors in document:\n", len(validationErrors))
		shown := validationErrors[:min(len(validationErrors), maxReportedWarnings)]
		fmt.Fprint(stderr, indent(formatValidationErrors(shown), "  "))
		if len(validationErrors) > maxReportedWarnings {
			fmt.Fprintf(stderr, "  ... and %d more\n", len(validationErrors)-maxReportedWarnings)
		}
		fmt.Fprintln(stderr)
	}

	return doc, nil
}

func formatValidationErrors(validationErrors []error) string {
	var sb strings.Builder
	indexWidth := len(strconv.Itoa(len(validationErrors)))

	for i, validationErr := range validationErrors {
		fmt.Fprintf(&sb, "%*d. %s\n", indexWidth, i+1, validationErr.Error())
	}

	return sb.String()
}

func indent(s, prefix string) string {
	if s == "" {
		return ""
	}
	lines := strings.SplitAfter(s, "\n")
	var sb strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		sb.WriteString(prefix)
		sb.WriteString(line)
	}
	return sb.String()
}
