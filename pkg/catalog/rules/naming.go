package rules

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	pascalCaseRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	snakeCaseRe  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	upperSnakeRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

func isPascalCase(s string) bool {
	if len(s) == 0 || !unicode.IsUpper(rune(s[0])) {
		return false
	}
	return pascalCaseRe.MatchString(s)
}

func isSnakeCase(s string) bool {
	if !snakeCaseRe.MatchString(s) {
		return false
	}
	if strings.Contains(s, "__") || strings.HasSuffix(s, "_") {
		return false
	}
	return true
}

func isUpperSnakeCase(s string) bool {
	if !upperSnakeRe.MatchString(s) {
		return false
	}
	if strings.Contains(s, "__") || strings.HasSuffix(s, "_") {
		return false
	}
	return true
}

// methodVerb returns the leading standard-method verb of an rpc name, or
// "" when the name starts with no recognized verb.
func methodVerb(name string) string {
	for _, verb := range []string{"BatchGet", "BatchCreate", "BatchUpdate", "BatchDelete", "Get", "List", "Create", "Update", "Delete", "Search", "Undelete"} {
		if strings.HasPrefix(name, verb) {
			rest := strings.TrimPrefix(name, verb)
			if rest == "" || unicode.IsUpper(rune(rest[0])) {
				return verb
			}
		}
	}
	return ""
}
