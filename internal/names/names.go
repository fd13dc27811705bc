// Package names normalizes display names and groups them alphabetically,
// ignoring case and diacritics.
package names

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// OtherBucket holds names that do not start with a letter.
const OtherBucket = "#"

// Normalize trims s, decomposes it, drops combining marks and lowercases
// the result.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(out)
}

// Bucket returns the grouping key for s.
func Bucket(s string) string {
	r, _ := utf8.DecodeRuneInString(Normalize(s))
	if unicode.IsLetter(r) {
		return string(unicode.ToUpper(r))
	}
	return OtherBucket
}

// Group buckets items by the first letter of their normalized name. Each
// bucket is sorted by normalized name, then by raw name.
func Group[T any](items []T, name func(T) string) map[string][]T {
	type keyed struct {
		item T
		raw  string
		norm string
	}

	buckets := make(map[string][]keyed)
	for _, item := range items {
		raw := name(item)
		key := Bucket(raw)
		buckets[key] = append(buckets[key], keyed{item: item, raw: raw, norm: Normalize(raw)})
	}

	out := make(map[string][]T, len(buckets))
	for key, entries := range buckets {
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].norm != entries[j].norm {
				return entries[i].norm < entries[j].norm
			}
			return entries[i].raw < entries[j].raw
		})
		sorted := make([]T, len(entries))
		for i, e := range entries {
			sorted[i] = e.item
		}
		out[key] = sorted
	}
	return out
}
