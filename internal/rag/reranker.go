package rag

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/docrag/docrag/internal/vectorstore"
)

// Reranker re-scores retrieved candidates with a signal independent of the
// vector distance. New scoring strategies are added as new implementations,
// never as flags inside the retrieval logic.
type Reranker interface {
	Rerank(ctx context.Context, question string, results []vectorstore.SearchResult) ([]vectorstore.SearchResult, error)
	Name() string
}

// IdentityReranker keeps the vector-distance order untouched.
type IdentityReranker struct{}

func NewIdentityReranker() *IdentityReranker { return &IdentityReranker{} }

func (r *IdentityReranker) Name() string { return "identity" }

func (r *IdentityReranker) Rerank(_ context.Context, _ string, results []vectorstore.SearchResult) ([]vectorstore.SearchResult, error) {
	return results, nil
}

// BM25Reranker re-scores candidates by lexical overlap between the question
// and the raw chunk text. The candidate set itself is the corpus, so IDF is
// computed over the retrieved chunks only.
type BM25Reranker struct {
	k1           float64
	b            float64
	tokenPattern *regexp.Regexp
}

func NewBM25Reranker() *BM25Reranker {
	return &BM25Reranker{
		k1:           1.5,
		b:            0.75,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
	}
}

func (r *BM25Reranker) Name() string { return "bm25" }

func (r *BM25Reranker) Rerank(_ context.Context, question string, results []vectorstore.SearchResult) ([]vectorstore.SearchResult, error) {
	if len(results) == 0 {
		return results, nil
	}

	docs := make([][]string, len(results))
	totalLen := 0
	for i, res := range results {
		docs[i] = r.tokenize(res.Content)
		totalLen += len(docs[i])
	}
	avgLen := float64(totalLen) / float64(len(docs))
	if avgLen == 0 {
		return results, nil
	}

	// document frequency per term across the candidate set
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := float64(len(docs))
	idf := func(term string) float64 {
		d := float64(df[term])
		return math.Log(1 + (n-d+0.5)/(d+0.5))
	}

	queryTerms := r.tokenize(question)

	reranked := make([]vectorstore.SearchResult, len(results))
	copy(reranked, results)
	for i, doc := range docs {
		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}

		score := 0.0
		docLen := float64(len(doc))
		for _, term := range queryTerms {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			score += idf(term) * (f * (r.k1 + 1)) / (f + r.k1*(1-r.b+r.b*docLen/avgLen))
		}
		reranked[i].Score = score
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	return reranked, nil
}

func (r *BM25Reranker) tokenize(text string) []string {
	return r.tokenPattern.FindAllString(strings.ToLower(text), -1)
}
