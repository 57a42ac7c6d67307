package wordsearch

import (
	"fmt"
	"slices"
)

type orientation int

const (
	horizontal orientation = iota
	vertical
)

// IsPresent reports whether word appears as a contiguous run of line, read
// either left to right or right to left. line is not modified.
// An empty word is trivially present. Bytes of word that are not valid UTF-8
// are read as utf8.RuneError, one rune per byte.
func IsPresent(word string, line []rune) bool {
	w := []rune(word)
	return indexRunes(line, w) >= 0 || indexRunes(line, reversed(w)) >= 0
}

// Present reports whether word appears in any row or column of g, in
// either direction.
func Present(word string, g Grid) (bool, error) {
	if err := check(word, g); err != nil {
		return false, err
	}
	rows, cols := g.lines()
	return anyPresent(word, rows) || anyPresent(word, cols), nil
}

func anyPresent(word string, lines Grid) bool {
	for _, line := range lines {
		if IsPresent(word, line) {
			return true
		}
	}
	return false
}

// Filter returns the words present in g, keeping their input order.
func Filter(words []string, g Grid) ([]string, error) {
	found := make([]string, 0, len(words))
	for _, w := range words {
		ok, err := Present(w, g)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, w)
		}
	}
	return found, nil
}

// Locate returns the coordinates of the first occurrence of word in g, or
// nil if word is absent. Rows are scanned before columns, and the forward
// spelling is tried before the reversed one on each line.
func Locate(word string, g Grid) ([]Coordinate, error) {
	if err := check(word, g); err != nil {
		return nil, err
	}
	rows, cols := g.lines()
	w := []rune(word)
	rev := reversed(w)
	if span := firstMatch(w, rev, rows, horizontal); span != nil {
		return span, nil
	}
	return firstMatch(w, rev, cols, vertical), nil
}

// LocateAll searches every word in g. A word found both in a row and in a
// column carries the coordinates of both matches, the horizontal one first.
// Only the first matching row and the first matching column are used, and a
// line that holds the word forwards is not searched for it backwards, so a
// palindrome is reported once per line rather than twice.
func LocateAll(words []string, g Grid) (Result, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	for _, w := range words {
		if w == "" {
			return nil, ErrEmptyWord
		}
	}

	rows, cols := g.lines()
	res := make(Result, len(words))
	for _, w := range words {
		res[w] = locateWord(w, rows, cols)
	}
	return res, nil
}

// Solve runs LocateAll on a raw puzzle: input[0] lists the target words and
// every following entry is a grid row given one character per element.
func Solve(input [][]string) (Result, error) {
	if len(input) == 0 {
		return Result{}, nil
	}
	g := make(Grid, 0, len(input)-1)
	for i, cells := range input[1:] {
		row := make([]rune, len(cells))
		for j, cell := range cells {
			if runeLen(cell) != 1 {
				return nil, fmt.Errorf("%w: cell (%d,%d) is %q", ErrInvalidGrid, i, j, cell)
			}
			row[j] = []rune(cell)[0]
		}
		g = append(g, row)
	}
	return LocateAll(input[0], g)
}

func locateWord(word string, rows, cols Grid) []Coordinate {
	w := []rune(word)
	rev := reversed(w)
	span := []Coordinate{}
	span = append(span, firstMatch(w, rev, rows, horizontal)...)
	span = append(span, firstMatch(w, rev, cols, vertical)...)
	return span
}

func firstMatch(word, rev []rune, lines Grid, o orientation) []Coordinate {
	for i, line := range lines {
		if span := matchLine(word, rev, line, i, o); span != nil {
			return span
		}
	}
	return nil
}

// matchLine returns the span of word in line, ordered from the word's
// first letter to its last whichever way it is written.
func matchLine(word, rev, line []rune, index int, o orientation) []Coordinate {
	if span := lineSpan(word, line, index, o); span != nil {
		return span
	}
	span := lineSpan(rev, line, index, o)
	slices.Reverse(span)
	return span
}

// lineSpan returns one coordinate per letter of the leftmost occurrence of
// word in line, or nil. index is the line's row (horizontal) or column
// (vertical) in the grid.
func lineSpan(word, line []rune, index int, o orientation) []Coordinate {
	start := indexRunes(line, word)
	if start < 0 {
		return nil
	}
	span := make([]Coordinate, len(word))
	for i := range span {
		if o == horizontal {
			span[i] = Coordinate{Row: index, Col: start + i}
		} else {
			span[i] = Coordinate{Row: start + i, Col: index}
		}
	}
	return span
}

// indexRunes returns the index of the first instance of word in line, or -1.
func indexRunes(line, word []rune) int {
	for i := 0; i+len(word) <= len(line); i++ {
		if slices.Equal(line[i:i+len(word)], word) {
			return i
		}
	}
	return -1
}

func check(word string, g Grid) error {
	if word == "" {
		return ErrEmptyWord
	}
	return g.validate()
}
