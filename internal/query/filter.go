// Package query implements word tokenization and inline filter-token
// parsing for raw user queries.
package query

import (
	"regexp"
	"strings"

	"github.com/joseon-annals/rag-service/internal/model"
)

var (
	wordRe     = regexp.MustCompile(`[A-Za-z0-9가-힣]+`)
	filterRe   = regexp.MustCompile(`(?i)\b(title|link|row_id|chunk_id):(?:("[^"]+")|(\S+))`)
	metaOnlyRe = regexp.MustCompile(`(?:^|\s)~(\S+)`)
)

// Tokenize lowercases the input and returns maximal runs of ASCII
// alphanumerics and Hangul syllables.
func Tokenize(text string) []string {
	matches := wordRe.FindAllString(text, -1)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = strings.ToLower(m)
	}
	return out
}

// FilterSet maps a filter key to the (ordered) values accumulated for it.
type FilterSet map[string][]string

// ParseFilters extracts title:/link:/row_id:/chunk_id: tokens from query,
// returning the query with those tokens removed and the accumulated
// filter set. Malformed filter tokens are simply not matched by the
// grammar and are left untouched in the returned query.
func ParseFilters(q string) (string, FilterSet) {
	filters := FilterSet{}
	matches := filterRe.FindAllStringSubmatch(q, -1)
	for _, m := range matches {
		key := strings.ToLower(m[1])
		val := m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.Trim(strings.TrimSpace(val), `"`)
		if val != "" {
			filters[key] = append(filters[key], val)
		}
	}
	clean := strings.TrimSpace(filterRe.ReplaceAllString(q, ""))
	return clean, filters
}

// ParseMetaOnly strips `~word` marker tokens and reports whether any were
// present (meta-only mode should be used for retrieval routing).
func ParseMetaOnly(q string) (string, bool) {
	hits := metaOnlyRe.FindAllStringSubmatch(q, -1)
	if len(hits) == 0 {
		return q, false
	}
	clean := metaOnlyRe.ReplaceAllString(q, " ")
	clean = strings.ReplaceAll(clean, "~", " ")
	clean = strings.Join(strings.Fields(clean), " ")
	return clean, true
}

// AllowedDocIDs applies a FilterSet against the corpus, returning the set
// of doc-ids that satisfy every present filter key. A nil map return
// value means "no filter restriction" (filters was empty).
func AllowedDocIDs(docs []model.Doc, filters FilterSet) map[int]bool {
	if len(filters) == 0 {
		return nil
	}
	rowIDs := toSet(filters["row_id"])
	chunkIDs := toSet(filters["chunk_id"])
	titles := filters["title"]
	links := filters["link"]

	allowed := make(map[int]bool)
	for i, d := range docs {
		ok := true
		if len(rowIDs) > 0 && !rowIDs[d.RowID] {
			ok = false
		}
		if ok && len(chunkIDs) > 0 && !chunkIDs[d.ChunkID] {
			ok = false
		}
		if ok && len(titles) > 0 && !containsAnyFold(d.Title, titles) {
			ok = false
		}
		if ok && len(links) > 0 && !containsAnyFold(d.Link, links) {
			ok = false
		}
		if ok {
			allowed[i] = true
		}
	}
	return allowed
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	s := make(map[string]bool, len(vals))
	for _, v := range vals {
		s[v] = true
	}
	return s
}

func containsAnyFold(haystack string, needles []string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
