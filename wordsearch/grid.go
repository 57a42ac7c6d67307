// Package wordsearch locates words written horizontally or vertically, in
// either direction, inside a rectangular grid of letters.
package wordsearch

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Grid is a rectangular block of letters, indexed [row][col].
type Grid [][]rune

// NewGrid builds a grid from one string per row.
// Rows must all have the same number of characters.
func NewGrid(rows ...string) (Grid, error) {
	g := make(Grid, len(rows))
	for i, row := range rows {
		g[i] = []rune(row)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g Grid) validate() error {
	for i := 1; i < len(g); i++ {
		if len(g[i]) != len(g[0]) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidGrid, i, len(g[i]), len(g[0]))
		}
	}
	return nil
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the number of columns, 0 for an empty grid.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

func (g Grid) String() string {
	lines := make([]string, len(g))
	for i, row := range g {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// lines returns the horizontal and vertical lines of g. A grid with fewer
// than two rows has no vertical lines.
func (g Grid) lines() (rows, cols Grid) {
	if len(g) > 1 {
		cols = Rotate(g)
	}
	return g, cols
}

// Rotate transposes an M×N grid into the N×M grid of its columns.
// Column i of the result holds the i-th letter of every row, top to bottom.
// g must be rectangular, as grids from NewGrid are; Rotate panics if a row
// is shorter than the first one.
func Rotate(g Grid) Grid {
	if len(g) == 0 {
		return Grid{}
	}
	cols := make(Grid, len(g[0]))
	for c := range cols {
		col := make([]rune, len(g))
		for r, row := range g {
			col[r] = row[c]
		}
		cols[c] = col
	}
	return cols
}

// Reverse returns word with its characters in reverse order. Invalid UTF-8
// bytes come back as utf8.RuneError.
func Reverse(word string) string {
	r := reversed([]rune(word))
	return string(r)
}

// reversed returns a reversed copy of line.
func reversed(line []rune) []rune {
	out := make([]rune, len(line))
	for i, c := range line {
		out[len(line)-1-i] = c
	}
	return out
}

// Coordinate is the 0-based position of one letter in a grid.
// It encodes to JSON as a [row, col] pair.
type Coordinate struct {
	Row int
	Col int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Row, c.Col})
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	c.Row, c.Col = pair[0], pair[1]
	return nil
}

// Result maps each target word to the coordinates of its letters, ordered
// from the word's first letter to its last. Words that were not found map
// to an empty slice.
type Result map[string][]Coordinate

// Found returns the words of r that have at least one coordinate, in the
// order given by words.
func (r Result) Found(words []string) []string {
	found := make([]string, 0, len(words))
	for _, w := range words {
		if len(r[w]) > 0 {
			found = append(found, w)
		}
	}
	return found
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
