package gate

import "strings"

// ParseScopes parses a space-separated scope string (the OAuth "scope" claim
// or introspection field) into a deduplicated slice. Returns nil for an empty
// string.
func ParseScopes(scopeStr string) []string {
	if scopeStr == "" {
		return nil
	}

	var scopes []string
	seen := make(map[string]struct{})
	for _, part := range strings.Fields(scopeStr) {
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		scopes = append(scopes, part)
	}
	return scopes
}
