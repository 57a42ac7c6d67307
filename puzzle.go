package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bodul/wordsearch/wordsearch"
)

var errEmptyPuzzle = errors.New("puzzle has no rows or no words")

// Puzzle is a word search: a letter grid and the words hidden in it.
type Puzzle struct {
	ID        string    `json:"id" yaml:"-"`
	Title     string    `json:"title,omitempty" yaml:"title"`
	Words     []string  `json:"words" yaml:"words"`
	Rows      []string  `json:"rows" yaml:"rows"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

// Normalize upper-cases words and rows and strips surrounding spaces.
func (p *Puzzle) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	for i, w := range p.Words {
		p.Words[i] = strings.ToUpper(strings.TrimSpace(w))
	}
	for i, r := range p.Rows {
		p.Rows[i] = strings.ToUpper(strings.ReplaceAll(r, " ", ""))
	}
}

// Validate checks the puzzle can be searched.
func (p *Puzzle) Validate() error {
	if len(p.Rows) == 0 || len(p.Words) == 0 {
		return errEmptyPuzzle
	}
	for _, w := range p.Words {
		if w == "" {
			return wordsearch.ErrEmptyWord
		}
	}
	_, err := p.Grid()
	return err
}

// Grid returns the letter grid of the puzzle.
func (p *Puzzle) Grid() (wordsearch.Grid, error) {
	g, err := wordsearch.NewGrid(p.Rows...)
	if err != nil {
		return nil, fmt.Errorf("puzzle %s: %w", p.ID, err)
	}
	return g, nil
}

// Solve locates every word of the puzzle.
func (p *Puzzle) Solve() (wordsearch.Result, error) {
	g, err := p.Grid()
	if err != nil {
		return nil, err
	}
	return wordsearch.LocateAll(p.Words, g)
}
