// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canon

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/scripture-engine/pkg/types"
)

// rangeRe matches the coordinate part of a reference after the book name:
// "3", "3:16", "3:16-21", "3:16-4:2". Whitespace around the dash is
// tolerated; anything else is a parse failure.
var rangeRe = regexp.MustCompile(`^(\d+)(?::(\d+)(?:\s*[-–]\s*(?:(\d+):)?(\d+))?)?$`)

// ParseReferences parses the trimmed input as a single Bible reference: a
// book name followed by optional coordinates, with nothing after them. It
// returns an empty slice when no book name is recognised, the coordinate
// part is malformed, or trailing text remains. Verse and chapter fields
// are 0 when absent; granularity is derived from which fields are set.
func ParseReferences(o Oracle, text string) []types.Reference {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	book, rest, ok := matchBook(o, trimmed)
	if !ok {
		return nil
	}

	ref := types.Reference{Book: book.ID, BookName: book.Name}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		// Book-only reference.
		return []types.Reference{ref}
	}

	m := rangeRe.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}

	ref.StartChapter, _ = strconv.Atoi(m[1])
	ref.EndChapter = ref.StartChapter

	if m[2] == "" {
		// Chapter-only reference.
		return []types.Reference{ref}
	}

	ref.StartVerse, _ = strconv.Atoi(m[2])
	ref.EndVerse = ref.StartVerse

	if m[4] != "" {
		ref.EndVerse, _ = strconv.Atoi(m[4])
		if m[3] != "" {
			ref.EndChapter, _ = strconv.Atoi(m[3])
		}
	}

	return []types.Reference{ref}
}

// matchBook finds the longest book name or alias that prefixes text,
// case-insensitively. The character after the match must be a space or the
// end of the string, so "John" does not swallow "Johnson" and "1 John 2"
// resolves to 1 John rather than John.
func matchBook(o Oracle, text string) (Book, string, bool) {
	lower := strings.ToLower(text)

	var best Book
	bestLen := 0
	for _, b := range o.Books() {
		for _, name := range append([]string{b.Name}, b.Aliases...) {
			n := len(name)
			if n <= bestLen || len(lower) < n {
				continue
			}
			if lower[:n] != strings.ToLower(name) {
				continue
			}
			if len(lower) > n && lower[n] != ' ' {
				continue
			}
			best = b
			bestLen = n
		}
	}

	if bestLen == 0 {
		return Book{}, "", false
	}
	return best, text[bestLen:], true
}
