// Package version parses the major.minor.patch versions used by Arazzo documents.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 depending on whether v is lower than, equal to or greater than other.
func (v Version) Compare(other Version) int {
	for _, d := range []int{v.Major - other.Major, v.Minor - other.Minor, v.Patch - other.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// ParseVersion parses a version of the form major.minor.patch.
func ParseVersion(version string) (*Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid version %s", version)
	}

	names := []string{"major", "minor", "patch"}
	values := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid %s version %s: %w", names[i], part, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid %s version %s: cannot be negative", names[i], part)
		}
		values[i] = n
	}

	return &Version{Major: values[0], Minor: values[1], Patch: values[2]}, nil
}
