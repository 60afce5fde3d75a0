package config

import (
	"strings"
	"unicode"
)

// ParseModuleList parses a comma or space separated module selection into a
// set. An empty or separator-only string returns nil, meaning no restriction:
// the dashboard loads every registered module. Duplicates collapse and order
// is irrelevant.
func ParseModuleList(s string) map[string]struct{} {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(tokens) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
