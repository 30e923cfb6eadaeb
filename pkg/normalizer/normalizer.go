// Package normalizer rewrites colloquial Indonesian tokens to their standard
// KBBI dictionary forms. It is a pure token-level substitution: anything not
// in the map passes through untouched, punctuation and whitespace included.
package normalizer

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// DefaultKBBIMap is a small starter map of colloquial → canonical forms.
// Extend it per project via a custom map, which wins entry by entry.
var DefaultKBBIMap = map[string]string{
	"udah":   "sudah",
	"gak":    "tidak",
	"nggak":  "tidak",
	"aja":    "saja",
	"gimana": "bagaimana",
	"banget": "sangat",
}

// Tokens are maximal runs of word characters, hyphens and apostrophes.
// Hyphenated compounds are looked up as one token. Quote and hyphen runs on
// a token's edges are not part of the word and stay outside the lookup.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_'-]+`)

// Normalize replaces colloquial tokens with their canonical forms, preserving
// basic casing. Lookup is case-insensitive; only whole tokens match.
func Normalize(text string, customMap map[string]string) string {
	mapping := DefaultKBBIMap
	if len(customMap) > 0 {
		mapping = make(map[string]string, len(DefaultKBBIMap)+len(customMap))
		for k, v := range DefaultKBBIMap {
			mapping[k] = v
		}
		for k, v := range customMap {
			mapping[strings.ToLower(k)] = v
		}
	}

	return wordRe.ReplaceAllStringFunc(text, func(w string) string {
		prefix, core, suffix := splitEdges(w)
		if canonical, ok := mapping[strings.ToLower(core)]; ok {
			return prefix + matchCasing(core, canonical) + suffix
		}
		return w
	})
}

// splitEdges separates leading and trailing non-word runes (apostrophes,
// hyphens) from the token core, so "'udah'" looks up "udah".
func splitEdges(token string) (prefix, core, suffix string) {
	runes := []rune(token)
	start, end := 0, len(runes)
	for start < end && !isWordRune(runes[start]) {
		start++
	}
	for end > start && !isWordRune(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// LoadCustomMap reads a colloquial → canonical mapping from a JSON file.
func LoadCustomMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read normalization map %s: %w", path, err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse normalization map %s: %w", path, err)
	}
	return m, nil
}

// matchCasing shapes the replacement after the original token: fully
// upper-case stays upper-case, Title case stays capitalized, anything else
// uses the replacement's own casing.
func matchCasing(src, dst string) string {
	if isUpper(src) {
		return strings.ToUpper(dst)
	}
	if isTitle(src) {
		return capitalize(dst)
	}
	return dst
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isTitle(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) && !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}
