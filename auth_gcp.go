package main

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

var errNoGCPProject = errors.New("gemini: project_id is required")

// vertexConfig maps cfg onto a Vertex AI client configuration. Credentials
// are resolved by the SDK through Application Default Credentials, so
// GOOGLE_APPLICATION_CREDENTIALS or the metadata server must be available.
func (cfg GeminiConfig) vertexConfig() (*genai.ClientConfig, error) {
	if cfg.ProjectID == "" {
		return nil, errNoGCPProject
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	return &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	}, nil
}

func (cfg GeminiConfig) model() string {
	if cfg.Model == "" {
		return defaultModel
	}
	return cfg.Model
}

// GeminiClient reads word-search puzzles out of photos with a Gemini model.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient connects to Vertex AI for cfg.ProjectID.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	vc, err := cfg.vertexConfig()
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, vc)
	if err != nil {
		return nil, fmt.Errorf("create genai client (project %s, region %s): %w", vc.Project, vc.Location, err)
	}
	return &GeminiClient{client: client, model: cfg.model()}, nil
}

// Model returns the name of the model used for extraction.
func (g *GeminiClient) Model() string { return g.model }
