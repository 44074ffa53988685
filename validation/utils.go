package validation

import (
	"errors"
	"slices"
	"strings"
)

func asValidationError(err error, target **Error) bool {
	return errors.As(err, target)
}

// SortValidationErrors orders findings by line and column, lowest first.
// Errors that are not *Error keep their relative order and sort after all findings.
func SortValidationErrors(allErrors []error) {
	if len(allErrors) == 0 {
		return
	}

	var validErrs []error
	var otherErrs []error
	for _, err := range allErrors {
		var vErr *Error
		if errors.As(err, &vErr) {
			validErrs = append(validErrs, err)
		} else {
			otherErrs = append(otherErrs, err)
		}
	}

	slices.SortStableFunc(validErrs, func(a, b error) int {
		var aErr, bErr *Error
		_ = errors.As(a, &aErr)
		_ = errors.As(b, &bErr)
		return compareValidationErrors(aErr, bErr)
	})

	n := copy(allErrors, validErrs)
	copy(allErrors[n:], otherErrs)
}

func compareValidationErrors(a, b *Error) int {
	if a.GetLineNumber() != b.GetLineNumber() {
		return a.GetLineNumber() - b.GetLineNumber()
	}
	if a.GetColumnNumber() != b.GetColumnNumber() {
		return a.GetColumnNumber() - b.GetColumnNumber()
	}
	if a.Severity != b.Severity {
		return int(a.Severity) - int(b.Severity)
	}
	if c := strings.Compare(a.Rule, b.Rule); c != 0 {
		return c
	}
	return strings.Compare(a.Message(), b.Message())
}

// CountBySeverity returns how many findings of the given severity errs contains.
func CountBySeverity(errs []error, severity Severity) int {
	count := 0
	for _, err := range errs {
		var vErr *Error
		if errors.As(err, &vErr) {
			if vErr.Severity == severity {
				count++
			}
			continue
		}
		if severity == SeverityError {
			count++
		}
	}
	return count
}
