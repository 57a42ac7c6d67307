package main

import (
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bodul/wordsearch/wordsearch"
)

//go:embed frontend
var frontendFS embed.FS

const (
	maxUploadSize = 10 << 20 // 10 Mo
	maxJSONSize   = 1 << 20
	maxWordLen    = 64
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Server is the main HTTP server.
type Server struct {
	mux       *http.ServeMux
	store     *Store
	extractor PuzzleExtractor
	sse       *Broadcaster
	uploadRL  *rateLimiter
	claimRL   *rateLimiter
	log       *zap.Logger
}

// NewServer creates a configured HTTP server. extractor may be nil, in which
// case image uploads are refused.
func NewServer(cfg ServerConfig, store *Store, extractor PuzzleExtractor, log *zap.Logger) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		store:     store,
		extractor: extractor,
		sse:       NewBroadcaster(log.Named("sse")),
		uploadRL:  newRateLimiter(cfg.UploadRatePerMin, time.Minute),
		claimRL:   newRateLimiter(cfg.ClaimRatePerSec, time.Second),
		log:       log,
	}
	s.routes()
	return s
}

// Close stops the background work owned by the server.
func (s *Server) Close() {
	s.uploadRL.close()
	s.claimRL.close()
}

func (s *Server) routes() {
	// Puzzle API
	s.mux.HandleFunc("POST /api/puzzles", s.handleCreatePuzzle)
	s.mux.HandleFunc("GET /api/puzzles", s.handleListPuzzles)
	s.mux.HandleFunc("GET /api/puzzles/{id}", s.handleGetPuzzle)
	s.mux.HandleFunc("GET /api/puzzles/{id}/solution", s.handleSolution)
	s.mux.HandleFunc("POST /api/puzzles/{id}/search", s.handleSearch)
	s.mux.HandleFunc("POST /api/puzzles/{id}/filter", s.handleFilter)

	// Game API
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/games/{id}/join", s.handleJoinGame)
	s.mux.HandleFunc("POST /api/games/{id}/claim", s.handleClaim)
	s.mux.HandleFunc("GET /api/games/{id}/events", s.handleGameEvents)

	// Frontend static files
	frontendDir, _ := fs.Sub(frontendFS, "frontend")
	fileServer := http.FileServer(http.FS(frontendDir))
	s.mux.HandleFunc("GET /game/{id}", s.handleGamePage)
	s.mux.Handle("GET /", fileServer)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	s.log.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))
	s.mux.ServeHTTP(w, r)
}

// --- Puzzle handlers ---

// POST /api/puzzles — JSON puzzle, or an image analysed by Gemini.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		puzzle *Puzzle
		ok     bool
	)
	if mediaType == "multipart/form-data" {
		puzzle, ok = s.puzzleFromImage(w, r)
	} else {
		puzzle, ok = s.puzzleFromJSON(w, r)
	}
	if !ok {
		return
	}

	s.store.SavePuzzle(puzzle)
	s.log.Info("puzzle created",
		zap.String("puzzle", puzzle.ID),
		zap.Int("rows", len(puzzle.Rows)),
		zap.Int("words", len(puzzle.Words)))

	writeJSON(w, http.StatusCreated, puzzle)
}

func (s *Server) puzzleFromJSON(w http.ResponseWriter, r *http.Request) (*Puzzle, bool) {
	var p Puzzle
	if !decodeJSON(w, r, &p) {
		return nil, false
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		jsonError(w, puzzleErrorMessage(err), http.StatusBadRequest)
		return nil, false
	}
	return &p, true
}

func (s *Server) puzzleFromImage(w http.ResponseWriter, r *http.Request) (*Puzzle, bool) {
	if !s.uploadRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return nil, false
	}

	if s.extractor == nil {
		jsonError(w, "Analyse d'image non configurée", http.StatusServiceUnavailable)
		return nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, "Image trop volumineuse (max 10 Mo)", http.StatusRequestEntityTooLarge)
		return nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "Champ 'image' requis", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedMIME[mimeType] {
		jsonError(w, "Format accepté : JPEG ou PNG", http.StatusBadRequest)
		return nil, false
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "Erreur de lecture de l'image", http.StatusInternalServerError)
		return nil, false
	}

	puzzle, err := s.extractor.ExtractPuzzle(r.Context(), imageData, mimeType)
	if err != nil {
		s.log.Error("extract puzzle", zap.Error(err))
		jsonError(w, "Erreur lors de l'analyse de la grille", http.StatusInternalServerError)
		return nil, false
	}
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		puzzle.Title = title
	}
	return puzzle, true
}

// GET /api/puzzles — list all puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListPuzzles())
}

// GET /api/puzzles/{id} — get a single puzzle.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	puzzle := s.store.GetPuzzle(r.PathValue("id"))
	if puzzle == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, puzzle)
}

// GET /api/puzzles/{id}/solution — coordinates of every word.
func (s *Server) handleSolution(w http.ResponseWriter, r *http.Request) {
	puzzle := s.store.GetPuzzle(r.PathValue("id"))
	if puzzle == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}

	solution, err := puzzle.Solve()
	if err != nil {
		s.log.Error("solve puzzle", zap.String("puzzle", puzzle.ID), zap.Error(err))
		jsonError(w, "Grille invalide", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"puzzle_id": puzzle.ID,
		"words":     solution,
		"missing":   len(puzzle.Words) - len(solution.Found(puzzle.Words)),
	})
}

// POST /api/puzzles/{id}/search — look for any word in the grid.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	puzzle := s.store.GetPuzzle(r.PathValue("id"))
	if puzzle == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Word string `json:"word"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	word := strings.ToUpper(strings.TrimSpace(req.Word))
	if word == "" || utf8.RuneCountInString(word) > maxWordLen {
		jsonError(w, "Champ 'word' requis (64 lettres max)", http.StatusBadRequest)
		return
	}

	grid, err := puzzle.Grid()
	if err != nil {
		jsonError(w, "Grille invalide", http.StatusInternalServerError)
		return
	}
	present, err := wordsearch.Present(word, grid)
	if err != nil {
		jsonError(w, puzzleErrorMessage(err), http.StatusBadRequest)
		return
	}
	coords, err := wordsearch.Locate(word, grid)
	if err != nil {
		jsonError(w, puzzleErrorMessage(err), http.StatusBadRequest)
		return
	}
	if coords == nil {
		coords = []wordsearch.Coordinate{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"word":        word,
		"present":     present,
		"coordinates": coords,
	})
}

// POST /api/puzzles/{id}/filter — which of the given words are in the grid.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	puzzle := s.store.GetPuzzle(r.PathValue("id"))
	if puzzle == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Words []string `json:"words"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	words := make([]string, len(req.Words))
	for i, word := range req.Words {
		words[i] = strings.ToUpper(strings.TrimSpace(word))
	}

	grid, err := puzzle.Grid()
	if err != nil {
		jsonError(w, "Grille invalide", http.StatusInternalServerError)
		return
	}
	present, err := wordsearch.Filter(words, grid)
	if err != nil {
		jsonError(w, puzzleErrorMessage(err), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"present": present})
}

// --- Game handlers ---

// POST /api/games — create a game from a puzzle.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PuzzleID string `json:"puzzle_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PuzzleID == "" {
		jsonError(w, "Champ 'puzzle_id' requis", http.StatusBadRequest)
		return
	}

	game, err := s.store.CreateGame(req.PuzzleID)
	if errors.Is(err, errPuzzleNotFound) {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("create game", zap.String("puzzle", req.PuzzleID), zap.Error(err))
		jsonError(w, "Grille invalide", http.StatusInternalServerError)
		return
	}

	s.log.Info("game created", zap.String("game", game.ID), zap.String("puzzle", game.PuzzleID))
	writeJSON(w, http.StatusCreated, game.View())
}

// GET /api/games — list all games.
func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	games := s.store.ListGames()
	views := make([]GameView, len(games))
	for i, g := range games {
		views[i] = g.View()
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /api/games/{id} — get current game state.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	resp := struct {
		GameView
		Puzzle *Puzzle `json:"puzzle"`
	}{
		GameView: game.View(),
		Puzzle:   s.store.GetPuzzle(game.PuzzleID),
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/games/{id}/join — join a game with a pseudo.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pseudo == "" {
		jsonError(w, "Champ 'pseudo' requis", http.StatusBadRequest)
		return
	}

	pseudo := sanitizePseudo(req.Pseudo)
	if pseudo == "" {
		jsonError(w, "Pseudo invalide", http.StatusBadRequest)
		return
	}

	player := game.AddPlayer(pseudo)

	s.sse.Publish(game.ID, eventPlayerJoined, map[string]any{
		"pseudo": player.Pseudo,
		"color":  player.Color,
	})

	writeJSON(w, http.StatusOK, player)
}

// POST /api/games/{id}/claim — announce a found word.
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	if !s.claimRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
		Word   string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Word) == "" {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	finding, err := game.Claim(sanitizePseudo(req.Pseudo), req.Word)
	switch {
	case errors.Is(err, errUnknownPlayer):
		jsonError(w, "Rejoignez la partie avant de jouer", http.StatusForbidden)
		return
	case errors.Is(err, errUnknownWord):
		jsonError(w, "Ce mot ne fait pas partie de la liste", http.StatusNotFound)
		return
	case errors.Is(err, errAlreadyFound):
		jsonError(w, "Mot déjà trouvé", http.StatusConflict)
		return
	case errors.Is(err, errWordNotInGrid):
		jsonError(w, "Ce mot n'est pas dans la grille", http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.log.Error("claim", zap.String("game", game.ID), zap.Error(err))
		jsonError(w, "Erreur interne", http.StatusInternalServerError)
		return
	}

	s.sse.Publish(game.ID, eventWordFound, map[string]any{
		"word":        finding.Word,
		"pseudo":      finding.Pseudo,
		"coordinates": finding.Coordinates,
	})
	if finding.Remaining == 0 {
		s.log.Info("game complete", zap.String("game", game.ID))
		s.sse.Publish(game.ID, eventGameComplete, map[string]any{
			"found": game.View().Found,
		})
	}

	writeJSON(w, http.StatusOK, finding)
}

// GET /api/games/{id}/events — SSE stream.
func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	playerPseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))

	s.sse.ServeSSE(w, r, game.ID, func(c *client) {
		// Send initial game state on connect.
		view := game.View()
		evt, err := encodeEvent(eventGameState, map[string]any{
			"players":   view.Players,
			"found":     view.Found,
			"remaining": view.Remaining,
		})
		if err != nil {
			s.log.Error("encode game state", zap.Error(err))
			return
		}
		c.ch <- evt
	}, func() {
		// On disconnect: broadcast player_left if pseudo was provided.
		if playerPseudo != "" {
			game.RemovePlayer(playerPseudo)
			s.sse.Publish(game.ID, eventPlayerLeft, map[string]any{
				"pseudo": playerPseudo,
			})
		}
	})
}

// --- Frontend page handlers ---

// GET /game/{id} — serve the game page.
func (s *Server) handleGamePage(w http.ResponseWriter, _ *http.Request) {
	data, _ := frontendFS.ReadFile("frontend/game.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return false
	}
	return true
}

func puzzleErrorMessage(err error) string {
	switch {
	case errors.Is(err, errEmptyPuzzle):
		return "La grille et la liste de mots sont requises"
	case errors.Is(err, wordsearch.ErrInvalidGrid):
		return "Toutes les lignes de la grille doivent avoir la même longueur"
	case errors.Is(err, wordsearch.ErrEmptyWord):
		return "Les mots ne peuvent pas être vides"
	default:
		return "Grille invalide"
	}
}

func sanitizePseudo(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 20 {
		s = string([]rune(s)[:20])
	}
	return s
}
