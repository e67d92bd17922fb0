package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"wilhelm/internal/apperr"
	"wilhelm/internal/database/relational"
	"wilhelm/internal/graph"
	"wilhelm/internal/language"
	"wilhelm/internal/rag"
)

// MockVocabulary implements Vocabulary for testing.
type MockVocabulary struct {
	Graph    *graph.Graph
	Rows     []map[string]any
	Runs     []relational.Run
	Err      error
	Called   string
	MaxHops  int
	Language language.Language
}

func (m *MockVocabulary) CountByLanguage(ctx context.Context, lang language.Language) ([]map[string]any, error) {
	m.Called, m.Language = "count", lang
	return m.Rows, m.Err
}

func (m *MockVocabulary) VocabularyPage(ctx context.Context, lang language.Language, perPage, page int) ([]map[string]any, error) {
	m.Called, m.Language = "page", lang
	return m.Rows, m.Err
}

func (m *MockVocabulary) Search(ctx context.Context, keyword string) ([]map[string]any, error) {
	m.Called = "search"
	return m.Rows, m.Err
}

func (m *MockVocabulary) Expand(ctx context.Context, word string) (*graph.Graph, error) {
	m.Called = "expand"
	return m.Graph, m.Err
}

func (m *MockVocabulary) ExpandApoc(ctx context.Context, word string, maxHops int) (*graph.Graph, error) {
	m.Called, m.MaxHops = "expandApoc", maxHops
	return m.Graph, m.Err
}

func (m *MockVocabulary) ExpandRecursive(ctx context.Context, word string) (*graph.Graph, error) {
	m.Called = "recursive"
	return m.Graph, m.Err
}

func (m *MockVocabulary) History(ctx context.Context, seed string, limit int) ([]relational.Run, error) {
	m.Called = "history"
	return m.Runs, m.Err
}

// MockExplainer implements Explainer for testing.
type MockExplainer struct {
	Explanation rag.Explanation
	Err         error
}

func (m *MockExplainer) Explain(ctx context.Context, word, question string) (rag.Explanation, error) {
	return m.Explanation, m.Err
}

func mensaGraph() *graph.Graph {
	return graph.NewGraph(
		[]graph.Node{graph.NewNode("1", "mensa", nil), graph.NewNode("2", "table", nil)},
		[]graph.Link{graph.NewLink("LINK", "1", "2", nil)},
	)
}

func TestHandleExpandWord_DefaultHops(t *testing.T) {
	mock := &MockVocabulary{Graph: mensaGraph()}
	s := &Server{vocab: mock}

	_, result, err := s.handleExpandWord(context.Background(), nil, ExpandWordArgs{Word: "mensa"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if mock.Called != "expand" {
		t.Errorf("Expected configured default expansion, got %s", mock.Called)
	}
	if len(result.Graph.Nodes) != 2 || len(result.Graph.Links) != 1 {
		t.Errorf("Unexpected graph %+v", result.Graph)
	}
}

func TestHandleExpandWord_ExplicitHops(t *testing.T) {
	mock := &MockVocabulary{Graph: mensaGraph()}
	s := &Server{vocab: mock}

	hops := -1
	if _, _, err := s.handleExpandWord(context.Background(), nil, ExpandWordArgs{Word: "mensa", MaxHops: &hops}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if mock.Called != "expandApoc" || mock.MaxHops != -1 {
		t.Errorf("Expected expandApoc with -1, got %s with %d", mock.Called, mock.MaxHops)
	}
}

func TestHandleExpandRecursive_Error(t *testing.T) {
	mock := &MockVocabulary{Err: apperr.ErrConnection}
	s := &Server{vocab: mock}

	_, _, err := s.handleExpandRecursive(context.Background(), nil, ExpandRecursiveArgs{Word: "mensa"})
	if !errors.Is(err, apperr.ErrConnection) {
		t.Errorf("Expected connection error, got %v", err)
	}
}

func TestHandleCountTerms(t *testing.T) {
	mock := &MockVocabulary{Rows: []map[string]any{{"count": int64(7)}}}
	s := &Server{vocab: mock}

	_, result, err := s.handleCountTerms(context.Background(), nil, CountTermsArgs{Language: "german"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if mock.Language != language.German {
		t.Errorf("Expected German, got %v", mock.Language)
	}
	if len(result.Rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(result.Rows))
	}
}

func TestHandleCountTerms_InvalidLanguage(t *testing.T) {
	mock := &MockVocabulary{}
	s := &Server{vocab: mock}

	_, _, err := s.handleCountTerms(context.Background(), nil, CountTermsArgs{Language: "french"})
	if !errors.Is(err, apperr.ErrInvalidLanguage) {
		t.Errorf("Expected invalid language error, got %v", err)
	}
	if mock.Called != "" {
		t.Error("Service should not be called for an invalid language")
	}
}

func TestHandleSearchTerms_EmptyRows(t *testing.T) {
	s := &Server{vocab: &MockVocabulary{}}

	_, result, err := s.handleSearchTerms(context.Background(), nil, SearchTermsArgs{Keyword: "zzz"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Rows == nil {
		t.Error("Expected empty, non-nil rows")
	}
}

func TestHandleListVocabulary(t *testing.T) {
	mock := &MockVocabulary{Rows: []map[string]any{{"term": "mensa", "definition": "table"}}}
	s := &Server{vocab: mock}

	_, result, err := s.handleListVocabulary(context.Background(), nil, ListVocabularyArgs{Language: "latin", PerPage: 10, Page: 1})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if mock.Language != language.Latin || result.Rows[0]["term"] != "mensa" {
		t.Errorf("Unexpected call %v / rows %v", mock.Language, result.Rows)
	}
}

func TestHandleExpansionHistory(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock := &MockVocabulary{Runs: []relational.Run{{RunID: "r1", Seed: "mensa", Strategy: "recursive", StartedAt: started}}}
	s := &Server{vocab: mock}

	_, result, err := s.handleExpansionHistory(context.Background(), nil, HistoryArgs{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.Runs) != 1 || result.Runs[0].StartedAt != "2024-05-01T12:00:00Z" {
		t.Errorf("Unexpected runs %+v", result.Runs)
	}
}

func TestHandleExpansionHistory_Disabled(t *testing.T) {
	s := &Server{vocab: &MockVocabulary{Err: apperr.ErrHistoryDisabled}}

	if _, _, err := s.handleExpansionHistory(context.Background(), nil, HistoryArgs{}); !errors.Is(err, apperr.ErrHistoryDisabled) {
		t.Errorf("Expected history disabled error, got %v", err)
	}
}

func TestHandleExplainWord(t *testing.T) {
	s := &Server{explainer: &MockExplainer{Explanation: rag.Explanation{Word: "mensa", Narrative: "a table"}}}

	_, result, err := s.handleExplainWord(context.Background(), nil, ExplainWordArgs{Word: "mensa"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Narrative != "a table" {
		t.Errorf("Expected narrative 'a table', got %q", result.Narrative)
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(Config{ServerName: "wilhelm", ServerVersion: "test"}, &MockVocabulary{}, nil, nil)
	if s.mcpServer == nil {
		t.Fatal("Expected MCP server to be created")
	}
	if s.explainer != nil {
		t.Error("Explainer should be nil when not configured")
	}
}
