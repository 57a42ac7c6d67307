package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/bodul/wordsearch/wordsearch"
)

var (
	cfgFile     string
	verbose     bool
	presentOnly bool
)

var rootCmd = &cobra.Command{
	Use:          "wordsearch",
	Short:        "wordsearch - find the words hidden in a letter grid",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the puzzle server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

var solveCmd = &cobra.Command{
	Use:   "solve <puzzle.yaml>",
	Short: "Print where each word of a puzzle file lies in its grid",
	Long: `Reads a puzzle file and prints the coordinates of every word as JSON.

The file is either a mapping:

  title: Animaux
  words: [CHAT, CHIEN]
  rows:
    - CHAT
    - HXXX

or a list whose first item holds the words and whose other items are the
grid rows, given as strings or as lists of single letters.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSolve(cmd.OutOrStdout(), args[0], presentOnly)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	serveCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML config file")
	solveCmd.Flags().BoolVar(&presentOnly, "present-only", false, "only list the words present in the grid")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(solveCmd)
}

// Execute runs the root command until it returns or the process is signalled.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func runServe(ctx context.Context) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var extractor PuzzleExtractor
	if cfg.Gemini.ProjectID != "" {
		gemini, err := NewGeminiClient(ctx, cfg.Gemini)
		if err != nil {
			return fmt.Errorf("impossible d'initialiser Gemini : %w", err)
		}
		log.Info("Client Gemini initialisé",
			zap.String("project", cfg.Gemini.ProjectID),
			zap.String("model", gemini.Model()))
		extractor = gemini
	} else {
		log.Info("GCP_PROJECT_ID non défini — analyse d'image désactivée")
	}

	srv := NewServer(cfg.Server, NewStore(), extractor, log)
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		// Cancelled on shutdown so open event streams return.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Serveur démarré", zap.String("url", "http://localhost:"+cfg.Server.Port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Arrêt du serveur")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runSolve(out io.Writer, path string, presentOnly bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read puzzle: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse puzzle %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return fmt.Errorf("parse puzzle %s: %w", path, errEmptyPuzzle)
	}

	var v any
	switch root := doc.Content[0]; root.Kind {
	case yaml.SequenceNode:
		v, err = solveRaw(root, presentOnly)
	default:
		v, err = solveMapping(root, presentOnly)
	}
	if err != nil {
		return fmt.Errorf("solve %s: %w", path, err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func solveMapping(root *yaml.Node, presentOnly bool) (any, error) {
	var p Puzzle
	if err := root.Decode(&p); err != nil {
		return nil, err
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if presentOnly {
		g, err := p.Grid()
		if err != nil {
			return nil, err
		}
		return wordsearch.Filter(p.Words, g)
	}
	return p.Solve()
}

// solveRaw handles the list layout: words first, then one item per row.
func solveRaw(root *yaml.Node, presentOnly bool) (any, error) {
	input, err := decodeRawPuzzle(root)
	if err != nil {
		return nil, err
	}
	res, err := wordsearch.Solve(input)
	if err != nil {
		return nil, err
	}
	if presentOnly {
		return res.Found(input[0]), nil
	}
	return res, nil
}

func decodeRawPuzzle(root *yaml.Node) ([][]string, error) {
	if len(root.Content) == 0 {
		return nil, errEmptyPuzzle
	}

	input := make([][]string, len(root.Content))
	if err := root.Content[0].Decode(&input[0]); err != nil {
		return nil, fmt.Errorf("words: %w", err)
	}
	for i, item := range root.Content[1:] {
		switch item.Kind {
		case yaml.ScalarNode:
			for _, c := range item.Value {
				input[i+1] = append(input[i+1], string(c))
			}
		default:
			if err := item.Decode(&input[i+1]); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
	}
	return input, nil
}
