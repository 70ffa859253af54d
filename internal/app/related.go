package app

import (
	"sort"
	"strings"
)

// ValidateRelated filters stored cross-reference slugs against the live
// published set. Order-preserving; duplicates survive only if present in the
// input. Per candidate s:
//
//  1. exact match in published keeps s unchanged
//  2. otherwise any published slug equal to s or starting with s+"-" keeps the
//     published slug (the live one, possibly carrying a location suffix)
//  3. no match drops the candidate: a dangling reference is never rendered
//
// When several published slugs satisfy rule 2 the lexicographically smallest
// wins, keeping the result independent of map iteration order.
func ValidateRelated(candidates []string, published map[string]struct{}) []string {
	out := make([]string, 0, len(candidates))
	for _, s := range candidates {
		if s == "" {
			continue
		}
		if _, ok := published[s]; ok {
			out = append(out, s)
			continue
		}
		if m := bestSuffixMatch(s, published); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func bestSuffixMatch(s string, published map[string]struct{}) string {
	withSep := s + "-"
	var matches []string
	for p := range published {
		if p == s || strings.HasPrefix(p, withSep) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}
