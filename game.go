package main

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bodul/wordsearch/wordsearch"
)

var (
	errPuzzleNotFound = errors.New("puzzle not found")
	errUnknownPlayer  = errors.New("player has not joined the game")
	errUnknownWord    = errors.New("word is not part of the puzzle")
	errWordNotInGrid  = errors.New("word is not hidden in the grid")
	errAlreadyFound   = errors.New("word already found")
)

// Player represents a connected player.
type Player struct {
	Pseudo   string    `json:"pseudo"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// Finding is a word claimed by a player, with where it lies in the grid.
type Finding struct {
	Word        string                  `json:"word"`
	Pseudo      string                  `json:"pseudo"`
	Coordinates []wordsearch.Coordinate `json:"coordinates"`
	FoundAt     time.Time               `json:"found_at"`
	Remaining   int                     `json:"remaining"` // words left after this claim
}

// GameSession represents a collaborative hunt on a puzzle.
type GameSession struct {
	ID        string
	PuzzleID  string
	Players   map[string]*Player
	Found     map[string]*Finding
	CreatedAt time.Time

	solution wordsearch.Result
	mu       sync.Mutex
}

// playerColors is the palette assigned to players in order.
var playerColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#9333ea",
	"#ea580c", "#0891b2", "#c026d3", "#ca8a04",
}

func newGameSession(id, puzzleID string, solution wordsearch.Result) *GameSession {
	return &GameSession{
		ID:        id,
		PuzzleID:  puzzleID,
		Players:   make(map[string]*Player),
		Found:     make(map[string]*Finding),
		CreatedAt: time.Now(),
		solution:  solution,
	}
}

// AddPlayer adds a player to the session and returns the player.
func (g *GameSession) AddPlayer(pseudo string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.Players[pseudo]; ok {
		return p
	}

	p := &Player{
		Pseudo:   pseudo,
		Color:    playerColors[len(g.Players)%len(playerColors)],
		JoinedAt: time.Now(),
	}
	g.Players[pseudo] = p
	return p
}

// RemovePlayer removes a player from the session. Words they found stay found.
func (g *GameSession) RemovePlayer(pseudo string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.Players, pseudo)
}

// Claim records that pseudo found word. The word is matched case-insensitively
// against the puzzle's word list.
func (g *GameSession) Claim(pseudo, word string) (*Finding, error) {
	word = strings.ToUpper(strings.TrimSpace(word))

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.Players[pseudo]; !ok {
		return nil, errUnknownPlayer
	}
	coords, ok := g.solution[word]
	if !ok {
		return nil, errUnknownWord
	}
	if len(coords) == 0 {
		return nil, errWordNotInGrid
	}
	if _, ok := g.Found[word]; ok {
		return nil, errAlreadyFound
	}

	f := &Finding{
		Word:        word,
		Pseudo:      pseudo,
		Coordinates: coords,
		FoundAt:     time.Now(),
	}
	g.Found[word] = f
	f.Remaining = g.remaining()
	return f, nil
}

// Remaining returns how many findable words are still unclaimed.
func (g *GameSession) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remaining()
}

func (g *GameSession) remaining() int {
	n := 0
	for word, coords := range g.solution {
		if _, found := g.Found[word]; !found && len(coords) > 0 {
			n++
		}
	}
	return n
}

// GameView is a point-in-time copy of a session, safe to encode.
type GameView struct {
	ID        string             `json:"id"`
	PuzzleID  string             `json:"puzzle_id"`
	Players   map[string]Player  `json:"players"`
	Found     map[string]Finding `json:"found"`
	Remaining int                `json:"remaining"`
	Complete  bool               `json:"complete"`
	CreatedAt time.Time          `json:"created_at"`
}

// View returns a copy of the session state.
func (g *GameSession) View() GameView {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := GameView{
		ID:        g.ID,
		PuzzleID:  g.PuzzleID,
		Players:   make(map[string]Player, len(g.Players)),
		Found:     make(map[string]Finding, len(g.Found)),
		Remaining: g.remaining(),
		CreatedAt: g.CreatedAt,
	}
	v.Complete = v.Remaining == 0
	for k, p := range g.Players {
		v.Players[k] = *p
	}
	for w, f := range g.Found {
		v.Found[w] = *f
	}
	return v
}
