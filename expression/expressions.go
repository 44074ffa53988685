package expression

import (
	"strings"
)

// ExtractExpressions finds the runtime expressions in s. Both bare expressions ($inputs.id) that start a
// whitespace separated word and embedded expressions ({$inputs.id}, optionally followed by #/pointer) are returned.
func ExtractExpressions(s string) []Expression {
	var found []Expression

	i := 0
	for i < len(s) {
		switch {
		case s[i] == '{' && i+1 < len(s) && s[i+1] == '$':
			closing := strings.IndexByte(s[i:], '}')
			if closing < 0 {
				i++
				continue
			}
			end := i + closing + 1
			if end < len(s) && s[end] == '#' {
				end += wordLength(s[end:])
			}
			found = append(found, Expression(s[i:end]))
			i = end
		case s[i] == '$' && (i == 0 || isSpace(s[i-1])) && i+1 < len(s) && isLetter(s[i+1]):
			end := i + wordLength(s[i:])
			found = append(found, Expression(s[i:end]))
			i = end
		default:
			i++
		}
	}

	return found
}

// ValidateEmbedded validates every {$...} expression embedded in s.
func ValidateEmbedded(s string) []error {
	var errs []error
	for _, e := range ExtractExpressions(s) {
		if !strings.HasPrefix(string(e), "{") {
			continue
		}
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func wordLength(s string) int {
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) {
			return i
		}
	}
	return len(s)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
