package wordsearch

import "errors"

var (
	// ErrEmptyWord is returned when a target word has no characters.
	ErrEmptyWord = errors.New("empty word")
	// ErrInvalidGrid is returned when the rows of a grid differ in length
	// or a cell holds more than one character.
	ErrInvalidGrid = errors.New("invalid grid")
)
