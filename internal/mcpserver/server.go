// Package mcpserver exposes the vocabulary service as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"wilhelm/internal/database/relational"
	"wilhelm/internal/graph"
	"wilhelm/internal/language"
	"wilhelm/internal/rag"
)

// Vocabulary is the service surface the tools call.
type Vocabulary interface {
	CountByLanguage(ctx context.Context, lang language.Language) ([]map[string]any, error)
	VocabularyPage(ctx context.Context, lang language.Language, perPage, page int) ([]map[string]any, error)
	Search(ctx context.Context, keyword string) ([]map[string]any, error)
	Expand(ctx context.Context, word string) (*graph.Graph, error)
	ExpandApoc(ctx context.Context, word string, maxHops int) (*graph.Graph, error)
	ExpandRecursive(ctx context.Context, word string) (*graph.Graph, error)
	History(ctx context.Context, seed string, limit int) ([]relational.Run, error)
}

// Explainer narrates a word's subgraph.
type Explainer interface {
	Explain(ctx context.Context, word, question string) (rag.Explanation, error)
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
}

// Server wraps the MCP server with the vocabulary tools.
type Server struct {
	mcpServer *mcp.Server
	vocab     Vocabulary
	explainer Explainer
	logger    *slog.Logger
}

// NewServer registers every tool; explain_word only when explainer is non-nil.
func NewServer(cfg Config, vocab Vocabulary, explainer Explainer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}
	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		vocab:     vocab,
		explainer: explainer,
		logger:    logger,
	}
	s.registerTools()
	return s
}

// ExpandWordArgs defines the input for expand_word.
type ExpandWordArgs struct {
	Word    string `json:"word" jsonschema:"the term to expand from"`
	MaxHops *int   `json:"max_hops,omitempty" jsonschema:"maximum path length; -1 for unbounded, omitted for the configured default"`
}

// ExpandRecursiveArgs defines the input for expand_recursive.
type ExpandRecursiveArgs struct {
	Word string `json:"word" jsonschema:"the term to expand from"`
}

// GraphResult wraps an expanded subgraph.
type GraphResult struct {
	Graph graph.View `json:"graph" jsonschema:"nodes and links of the connected component"`
}

type SearchTermsArgs struct {
	Keyword string `json:"keyword" jsonschema:"substring to look for in node labels"`
}

type CountTermsArgs struct {
	Language string `json:"language" jsonschema:"one of german, ancientGreek, latin"`
}

type ListVocabularyArgs struct {
	Language string `json:"language" jsonschema:"one of german, ancientGreek, latin"`
	PerPage  int    `json:"per_page" jsonschema:"page size, positive"`
	Page     int    `json:"page" jsonschema:"page number starting at 1"`
}

// RowsResult wraps normalized query rows.
type RowsResult struct {
	Rows []map[string]any `json:"rows" jsonschema:"normalized result rows"`
}

type HistoryArgs struct {
	Seed  string `json:"seed,omitempty" jsonschema:"only runs seeded at this term"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of runs to return"`
}

// HistoryEntry is one expansion run; timestamps are RFC 3339 strings.
type HistoryEntry struct {
	RunID      string `json:"run_id"`
	Seed       string `json:"seed"`
	Strategy   string `json:"strategy"`
	MaxHops    int    `json:"max_hops"`
	NodeCount  int    `json:"node_count"`
	LinkCount  int    `json:"link_count"`
	RoundTrips int    `json:"round_trips"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	Severity   int    `json:"severity"`
	Flags      string `json:"flags,omitempty"`
	StartedAt  string `json:"started_at"`
}

type HistoryResult struct {
	Runs []HistoryEntry `json:"runs" jsonschema:"recent expansion runs, newest first"`
}

type ExplainWordArgs struct {
	Word     string `json:"word" jsonschema:"the term to explain"`
	Question string `json:"question,omitempty" jsonschema:"optional question about the term"`
}

type ExplainWordResult struct {
	Narrative string     `json:"narrative" jsonschema:"AI-generated explanation grounded on the subgraph"`
	Graph     graph.View `json:"graph" jsonschema:"the subgraph the explanation is based on"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "expand_word",
		Description: "Return the subgraph reachable from a term in a single store-side traversal, bounded by max_hops. Use this for the neighbourhood of a word.",
	}, s.handleExpandWord)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "expand_recursive",
		Description: "Return the whole connected component of a term by repeated one-hop expansions. Slower than expand_word but never cut off by a hop bound.",
	}, s.handleExpandRecursive)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_terms",
		Description: "Find nodes whose label contains the keyword literally.",
	}, s.handleSearchTerms)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "count_terms",
		Description: "Count the vocabulary terms of a language (german, ancientGreek, latin).",
	}, s.handleCountTerms)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_vocabulary",
		Description: "List term/definition pairs of a language one page at a time.",
	}, s.handleListVocabulary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "expansion_history",
		Description: "List recent expansion runs with their strategy, size, round trips and duration.",
	}, s.handleExpansionHistory)

	if s.explainer != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "explain_word",
			Description: "Explain a term from its expanded subgraph using Gemini. Use this for 'what does X mean' questions.",
		}, s.handleExplainWord)
	}
}

func (s *Server) handleExpandWord(ctx context.Context, _ *mcp.CallToolRequest, args ExpandWordArgs) (*mcp.CallToolResult, GraphResult, error) {
	var (
		g   *graph.Graph
		err error
	)
	if args.MaxHops == nil {
		g, err = s.vocab.Expand(ctx, args.Word)
	} else {
		g, err = s.vocab.ExpandApoc(ctx, args.Word, *args.MaxHops)
	}
	if err != nil {
		return nil, GraphResult{}, fmt.Errorf("expansion failed: %w", err)
	}
	return nil, GraphResult{Graph: g.View()}, nil
}

func (s *Server) handleExpandRecursive(ctx context.Context, _ *mcp.CallToolRequest, args ExpandRecursiveArgs) (*mcp.CallToolResult, GraphResult, error) {
	g, err := s.vocab.ExpandRecursive(ctx, args.Word)
	if err != nil {
		return nil, GraphResult{}, fmt.Errorf("recursive expansion failed: %w", err)
	}
	return nil, GraphResult{Graph: g.View()}, nil
}

func (s *Server) handleSearchTerms(ctx context.Context, _ *mcp.CallToolRequest, args SearchTermsArgs) (*mcp.CallToolResult, RowsResult, error) {
	rows, err := s.vocab.Search(ctx, args.Keyword)
	if err != nil {
		return nil, RowsResult{}, fmt.Errorf("search failed: %w", err)
	}
	return nil, RowsResult{Rows: nonNil(rows)}, nil
}

func (s *Server) handleCountTerms(ctx context.Context, _ *mcp.CallToolRequest, args CountTermsArgs) (*mcp.CallToolResult, RowsResult, error) {
	lang, err := language.OfClientValue(args.Language)
	if err != nil {
		return nil, RowsResult{}, err
	}
	rows, err := s.vocab.CountByLanguage(ctx, lang)
	if err != nil {
		return nil, RowsResult{}, fmt.Errorf("count failed: %w", err)
	}
	return nil, RowsResult{Rows: nonNil(rows)}, nil
}

func (s *Server) handleListVocabulary(ctx context.Context, _ *mcp.CallToolRequest, args ListVocabularyArgs) (*mcp.CallToolResult, RowsResult, error) {
	lang, err := language.OfClientValue(args.Language)
	if err != nil {
		return nil, RowsResult{}, err
	}
	rows, err := s.vocab.VocabularyPage(ctx, lang, args.PerPage, args.Page)
	if err != nil {
		return nil, RowsResult{}, fmt.Errorf("listing failed: %w", err)
	}
	return nil, RowsResult{Rows: nonNil(rows)}, nil
}

func (s *Server) handleExpansionHistory(ctx context.Context, _ *mcp.CallToolRequest, args HistoryArgs) (*mcp.CallToolResult, HistoryResult, error) {
	runs, err := s.vocab.History(ctx, args.Seed, args.Limit)
	if err != nil {
		return nil, HistoryResult{}, fmt.Errorf("failed to query history: %w", err)
	}
	entries := make([]HistoryEntry, 0, len(runs))
	for _, r := range runs {
		entries = append(entries, HistoryEntry{
			RunID:      r.RunID,
			Seed:       r.Seed,
			Strategy:   r.Strategy,
			MaxHops:    r.MaxHops,
			NodeCount:  r.NodeCount,
			LinkCount:  r.LinkCount,
			RoundTrips: r.RoundTrips,
			DurationMS: r.DurationMS,
			Error:      r.Error,
			Severity:   r.Severity,
			Flags:      r.Flags,
			StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil, HistoryResult{Runs: entries}, nil
}

func (s *Server) handleExplainWord(ctx context.Context, _ *mcp.CallToolRequest, args ExplainWordArgs) (*mcp.CallToolResult, ExplainWordResult, error) {
	out, err := s.explainer.Explain(ctx, args.Word, args.Question)
	if err != nil {
		return nil, ExplainWordResult{}, fmt.Errorf("explanation failed: %w", err)
	}
	return nil, ExplainWordResult{Narrative: out.Narrative, Graph: out.Graph}, nil
}

// Run serves MCP over stdio until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func nonNil(rows []map[string]any) []map[string]any {
	if rows == nil {
		return []map[string]any{}
	}
	return rows
}
