/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package crossword

import (
	"cmp"
	"slices"
	"strings"
)

// leadingNumber returns the run of digits that starts name, without leading
// zeros. A run of zeros yields "0".
func leadingNumber(name string) (string, bool) {
	end := strings.IndexFunc(name, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if end == -1 {
		end = len(name)
	}

	if end == 0 {
		return "", false
	}

	digits := strings.TrimLeft(name[:end], "0")
	if digits == "" {
		digits = "0"
	}

	return digits, true
}

// compareNumbers orders decimal digit strings of any length by value.
func compareNumbers(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}

	return strings.Compare(a, b)
}

// CompareClueNames orders clue names by their leading number, then by the
// whole name. Names without a leading number compare by name alone.
func CompareClueNames(a, b string) int {
	na, okA := leadingNumber(a)
	nb, okB := leadingNumber(b)

	if okA && okB {
		if c := compareNumbers(na, nb); c != 0 {
			return c
		}
	}

	return strings.Compare(a, b)
}

func sortedNames(entries map[string]Entry) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}

	slices.SortFunc(names, CompareClueNames)

	return names
}
