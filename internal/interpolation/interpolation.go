// Package interpolation finds format variables and colour codes in game
// strings so translations that drop them can be reported.
package interpolation

import (
	"regexp"
	"sort"
)

// varMatch stores a detected interpolation variable position.
type varMatch struct {
	start, end int
	value      string
}

// patterns to detect interpolation variables in game strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),                      // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                                        // {0}, {1}
	regexp.MustCompile(`%(?:[0-9]+\$)?[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %1$s, %2d
	regexp.MustCompile(`%%`),                                                // escaped percent literal
	regexp.MustCompile(`§[0-9a-fk-orA-FK-OR]`),                              // §a, §l formatting codes
}

// Variables returns the interpolation variables of text in document order.
// Overlapping matches keep the earliest, longest one.
func Variables(text string) []string {
	var all []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, varMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end-all[i].start > all[j].end-all[j].start
	})

	var out []string
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			out = append(out, m.value)
			lastEnd = m.end
		}
	}
	return out
}

// Lost returns the variables of original that translation does not carry,
// counting repeated variables separately. Order is not significant since
// translations may reorder arguments.
func Lost(original, translation string) []string {
	want := Variables(original)
	if len(want) == 0 {
		return nil
	}
	have := make(map[string]int)
	for _, v := range Variables(translation) {
		have[v]++
	}

	var lost []string
	for _, v := range want {
		if have[v] > 0 {
			have[v]--
			continue
		}
		lost = append(lost, v)
	}
	return lost
}
