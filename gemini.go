package main

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// PuzzleExtractor turns a photo of a word search into a Puzzle.
type PuzzleExtractor interface {
	ExtractPuzzle(ctx context.Context, imageData []byte, mimeType string) (*Puzzle, error)
}

const extractPrompt = `Analyse cette photo de grille de mots mêlés.

Extrais la grille et la liste des mots à trouver au format JSON suivant :
{
  "title": "<titre de la grille, ou vide>",
  "words": ["MOT", "AUTRE", ...],
  "rows": ["ABCDEF", "GHIJKL", ...]
}

Règles :
- "rows" contient une chaîne par ligne de la grille, de haut en bas, une lettre par case, sans espaces.
- Toutes les lignes ont exactement le même nombre de lettres.
- "words" contient les mots de la liste à trouver, en majuscules, sans accents ni espaces.
- Réponds UNIQUEMENT avec le JSON, sans commentaire ni markdown.`

// ExtractPuzzle sends an image to Gemini Flash and returns the extracted puzzle.
func (g *GeminiClient) ExtractPuzzle(ctx context.Context, imageData []byte, mimeType string) (*Puzzle, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	return parseExtractedPuzzle(text)
}

func parseExtractedPuzzle(text string) (*Puzzle, error) {
	var p Puzzle
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("parse puzzle JSON: %w\nraw response: %s", err, text)
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid puzzle: %dx%d with %d words: %w", len(p.Rows), rowLen(p.Rows), len(p.Words), err)
	}

	return &p, nil
}

func rowLen(rows []string) int {
	if len(rows) == 0 {
		return 0
	}
	return len([]rune(rows[0]))
}
