package assistant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/whrealtors/realty-web/internal/catalog"
	"github.com/whrealtors/realty-web/pkg/logging"
)

// Retriever returns the passages most relevant to a question.
type Retriever interface {
	Query(ctx context.Context, projectID, query string, topK int) ([]string, error)
}

// KnowledgeStore keeps per-project passages in memory. With an Embedder the
// passages are ranked by cosine similarity; without one, by word overlap.
type KnowledgeStore struct {
	embedder Embedder
	logger   *logging.Logger

	mu       sync.RWMutex
	passages map[string][]passage
}

type passage struct {
	content   string
	terms     map[string]struct{}
	embedding []float32
}

func NewKnowledgeStore(embedder Embedder, logger *logging.Logger) *KnowledgeStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &KnowledgeStore{
		embedder: embedder,
		logger:   logger,
		passages: make(map[string][]passage),
	}
}

// AddDocuments appends passages for projectID.
func (s *KnowledgeStore) AddDocuments(ctx context.Context, projectID string, contents []string) error {
	if len(contents) == 0 {
		return nil
	}
	var vectors [][]float32
	if s.embedder != nil {
		var err error
		vectors, err = s.embedder.Embed(ctx, contents)
		if err != nil {
			return fmt.Errorf("assistant: embed %s knowledge: %w", projectID, err)
		}
		if len(vectors) != len(contents) {
			return errors.New("assistant: embedding count does not match passages")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, content := range contents {
		p := passage{content: content, terms: termSet(content)}
		if vectors != nil {
			p.embedding = vectors[i]
		}
		s.passages[projectID] = append(s.passages[projectID], p)
	}
	return nil
}

// Query returns up to topK passages for projectID, best first. Equal scores
// keep document order.
func (s *KnowledgeStore) Query(ctx context.Context, projectID, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 5
	}
	s.mu.RLock()
	candidates := append([]passage(nil), s.passages[projectID]...)
	s.mu.RUnlock()
	if len(candidates) == 0 {
		return nil, nil
	}

	score := s.lexicalScorer(query)
	if s.embedder != nil && candidates[0].embedding != nil {
		vectors, err := s.embedder.Embed(ctx, []string{query})
		if err != nil {
			s.logger.Warn("query embedding failed; ranking by word overlap", "project_id", projectID, "error", err)
		} else if len(vectors) == 1 {
			queryVec := vectors[0]
			score = func(p passage) float64 { return cosineSimilarity(queryVec, p.embedding) }
		}
	}

	type scored struct {
		score   float64
		content string
	}
	ranked := make([]scored, len(candidates))
	for i, p := range candidates {
		ranked[i] = scored{score: score(p), content: p.content}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]string, 0, min(topK, len(ranked)))
	for _, r := range ranked[:min(topK, len(ranked))] {
		out = append(out, r.content)
	}
	return out, nil
}

func (s *KnowledgeStore) lexicalScorer(query string) func(passage) float64 {
	queryTerms := termSet(query)
	return func(p passage) float64 {
		if len(p.terms) == 0 {
			return 0
		}
		shared := 0
		for term := range queryTerms {
			if _, ok := p.terms[term]; ok {
				shared++
			}
		}
		return float64(shared) / math.Sqrt(float64(len(p.terms)))
	}
}

// termSet lower-cases words of three or more letters or digits.
func termSet(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(word)) >= 3 {
			terms[word] = struct{}{}
		}
	}
	return terms
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// LoadCatalogKnowledge indexes every project that has an assistant profile:
// its knowledge passages plus the public description.
func LoadCatalogKnowledge(ctx context.Context, store *KnowledgeStore, cat *catalog.Catalog) (int, error) {
	indexed := 0
	for _, p := range cat.All() {
		if p.Assistant == nil {
			continue
		}
		docs := append([]string(nil), p.Assistant.Knowledge...)
		if d := strings.TrimSpace(p.Description); d != "" {
			docs = append(docs, d)
		}
		if err := store.AddDocuments(ctx, p.ID, docs); err != nil {
			return indexed, err
		}
		indexed++
	}
	return indexed, nil
}
