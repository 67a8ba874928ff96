// Package connector provides the knowledge base implementations behind
// ports.KnowledgeConnector: an in-memory index and a Redis-backed one.
// Both rank FAQ entries lexically; Score is a higher-is-better
// similarity in [0, 1], best match first.
package connector

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/flume/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Entry is one FAQ document in the knowledge corpus.
type Entry struct {
	ID       string         `json:"id" yaml:"id"`
	Question string         `json:"question" yaml:"question"`
	Answer   string         `json:"answer" yaml:"answer"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type corpusDoc struct {
	FAQs []Entry `yaml:"faqs"`
}

// LoadCorpus reads a FAQ corpus from a YAML document.
func LoadCorpus(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}

	var doc corpusDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid corpus document: %w", err)
	}

	for i, e := range doc.FAQs {
		if e.ID == "" || e.Question == "" || e.Answer == "" {
			return nil, fmt.Errorf("corpus entry %d: id, question and answer are required", i)
		}
	}
	return doc.FAQs, nil
}

// tokenize lowercases and splits a text into bare word tokens.
func tokenize(text string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:#'\"()")
		if len(tok) > 2 {
			out[tok] = true
		}
	}
	return out
}

// rank scores every entry against the query by token overlap (Jaccard
// over query and document token sets) and returns the best topK
// matches, best first. Entries with no overlap are excluded.
func rank(entries []Entry, query string, topK int) []domain.Answer {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return nil
	}

	var answers []domain.Answer
	for _, e := range entries {
		dTokens := tokenize(e.Question + " " + e.Answer)

		overlap := 0
		for tok := range qTokens {
			if dTokens[tok] {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}

		union := len(dTokens)
		for tok := range qTokens {
			if !dTokens[tok] {
				union++
			}
		}

		answers = append(answers, domain.Answer{
			ID:       e.ID,
			Question: e.Question,
			Answer:   e.Answer,
			Score:    float64(overlap) / float64(union),
			Metadata: e.Metadata,
		})
	}

	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].Score > answers[j].Score
	})
	if topK > 0 && len(answers) > topK {
		answers = answers[:topK]
	}
	return answers
}
