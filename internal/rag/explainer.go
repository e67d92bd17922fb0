// Package rag narrates an expanded vocabulary subgraph with Gemini.
package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"wilhelm/internal/graph"
)

// ModelConfig defines configuration for a Gemini model.
type ModelConfig struct {
	Name        string
	Temperature float32
	TopP        float32
	TopK        int32
}

// AvailableModels maps the configured model key to its settings.
var AvailableModels = map[string]ModelConfig{
	"flash": {
		Name:        "gemini-flash-latest",
		Temperature: 0.4,
		TopP:        0.95,
		TopK:        40,
	},
	"pro": {
		Name:        "gemini-pro-latest",
		Temperature: 0.4,
		TopP:        0.95,
		TopK:        40,
	},
	"flash-2": {
		Name:        "gemini-2.0-flash",
		Temperature: 0.4,
		TopP:        0.95,
		TopK:        40,
	},
}

const defaultModelKey = "flash"

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator implements Generator with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	config ModelConfig
}

// NewGeminiGenerator creates the Gemini client; an unknown modelKey falls back to flash.
func NewGeminiGenerator(ctx context.Context, apiKey, modelKey string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	config, ok := AvailableModels[modelKey]
	if !ok {
		config = AvailableModels[defaultModelKey]
	}
	return &GeminiGenerator{client: client, config: config}, nil
}

func (g *GeminiGenerator) ModelName() string { return g.config.Name }

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.config.Name)
	model.SetTemperature(g.config.Temperature)
	model.SetTopP(g.config.TopP)
	model.SetTopK(g.config.TopK)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Expander yields the subgraph around a word.
type Expander interface {
	Expand(ctx context.Context, word string) (*graph.Graph, error)
}

// Explanation is the result of Explain.
type Explanation struct {
	Word      string     `json:"word"`
	Graph     graph.View `json:"graph"`
	Narrative string     `json:"narrative"`
}

// Explainer retrieves a word's subgraph and asks the model to describe it.
type Explainer struct {
	expander  Expander
	generator Generator
}

func NewExplainer(expander Expander, generator Generator) *Explainer {
	return &Explainer{expander: expander, generator: generator}
}

// Explain answers question about word from its expanded subgraph. An unknown word
// is answered without calling the model.
func (e *Explainer) Explain(ctx context.Context, word, question string) (Explanation, error) {
	g, err := e.expander.Expand(ctx, word)
	if err != nil {
		return Explanation{}, fmt.Errorf("failed to expand '%s': %w", word, err)
	}
	out := Explanation{Word: word, Graph: g.View()}
	if g.IsEmpty() {
		out.Narrative = fmt.Sprintf("'%s' is not in the vocabulary graph.", word)
		return out, nil
	}

	prompt, err := BuildPrompt(word, question, g)
	if err != nil {
		return Explanation{}, err
	}
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return Explanation{}, fmt.Errorf("failed to generate explanation: %w", err)
	}
	out.Narrative = cleanResponse(text)
	return out, nil
}

// BuildPrompt renders the grounding prompt for word's subgraph.
func BuildPrompt(word, question string, g *graph.Graph) (string, error) {
	graphJSON, err := json.MarshalIndent(g.View(), "", "  ")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(question) == "" {
		question = fmt.Sprintf("What does '%s' mean and how is it related to the other terms?", word)
	}

	return fmt.Sprintf(`You are a philologist explaining a vocabulary graph of German, Latin and Ancient Greek terms.
Nodes carry a "label" (the term or definition) and attributes such as "language".
Links point from a term to a related term or definition.

Word: %s
Question: %s

Graph (JSON):
%s

Answer only from the graph. Mention the related terms by label and their languages.
If the graph does not answer the question, say so clearly.`, word, question, string(graphJSON)), nil
}

// cleanResponse strips a markdown fence wrapped around the whole answer.
func cleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```markdown")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
