package retrieval

import (
	"strings"

	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

// topicSynonyms widens lexical recall for the domains the knowledge base
// actually covers. Purely string-level; no model involved.
var topicSynonyms = map[string][]string{
	"anxiety":    {"anxious", "worry", "worried", "nervous", "panic"},
	"anxious":    {"anxiety", "worry", "nervous"},
	"stress":     {"stressed", "pressure", "overwhelmed", "tension"},
	"sleep":      {"insomnia", "sleeping", "tired", "rest", "fatigue"},
	"sad":        {"sadness", "down", "depressed", "depression"},
	"depression": {"depressed", "sad", "hopeless", "low"},
	"anger":      {"angry", "frustrated", "irritated", "upset"},
	"work":       {"job", "workplace", "career", "deadline"},
	"family":     {"parents", "relatives", "home", "relationship"},
	"breathing":  {"breath", "breathe", "grounding", "relaxation"},
	"panic":      {"anxiety", "attack", "fear"},
	"lonely":     {"loneliness", "alone", "isolated", "isolation"},
}

// stemSuffixes are stripped to produce crude stem variants
var stemSuffixes = []string{"ing", "ness", "ed", "es", "s"}

// ExpandQuery derives related terms from the query: crude stems plus topic
// synonyms. The original tokens come first so downstream scoring favors
// exact matches.
func ExpandQuery(query string) []string {
	seen := map[string]bool{}
	var terms []string

	add := func(term string) {
		if len(term) < 3 || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	for _, tok := range textutil.Tokenize(query) {
		add(tok)

		for _, suffix := range stemSuffixes {
			if strings.HasSuffix(tok, suffix) && len(tok) > len(suffix)+2 {
				add(strings.TrimSuffix(tok, suffix))
				break
			}
		}

		for _, syn := range topicSynonyms[tok] {
			add(syn)
		}
	}

	return terms
}
