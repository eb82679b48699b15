package catalog

import (
	"errors"
	"strings"
)

// fuzzyCutoff is the minimum similarity score (inclusive) for an
// approximate name match.
const fuzzyCutoff = 0.4

var ErrEmptyQuery = errors.New("empty query")

type Result struct {
	Query   string   `json:"query"`
	Found   bool     `json:"found"`
	Product *Product `json:"product,omitempty"`
}

// Matcher resolves free-text queries against the product table. It holds
// no state beyond the immutable store, so it is safe for concurrent use.
type Matcher struct {
	store *Store
}

func NewMatcher(store *Store) *Matcher {
	return &Matcher{store: store}
}

// Resolve maps each query to at most one product: exact id first, then
// exact display name, then the best approximate name at or above the
// cutoff. Results keep query order; queries resolving to nothing are
// additionally reported in notFound, in order. A query that is blank
// after trimming fails the whole call with ErrEmptyQuery.
func (m *Matcher) Resolve(queries []string) (results []Result, notFound []string, err error) {
	results = make([]Result, 0, len(queries))

	for _, q := range queries {
		norm := strings.ToLower(strings.TrimSpace(q))
		if norm == "" {
			return nil, nil, ErrEmptyQuery
		}

		p, ok := m.resolveOne(norm)
		if !ok {
			results = append(results, Result{Query: q})
			notFound = append(notFound, q)
			continue
		}
		results = append(results, Result{Query: q, Found: true, Product: &p})
	}

	return results, notFound, nil
}

func (m *Matcher) resolveOne(norm string) (Product, bool) {
	if p, ok := m.store.Get(norm); ok {
		return p, true
	}

	for _, p := range m.store.products {
		if strings.ToLower(p.Name) == norm {
			return p, true
		}
	}

	return m.fuzzy(norm)
}

// fuzzy scans products in id order and replaces the best candidate only
// on a strictly higher score, so a score tie goes to the smallest
// product id.
func (m *Matcher) fuzzy(norm string) (Product, bool) {
	var (
		best  Product
		score float64
		found bool
	)

	for _, p := range m.store.products {
		s := similarity(norm, strings.ToLower(p.Name))
		if s >= fuzzyCutoff && s > score {
			best, score, found = p, s, true
		}
	}

	return best, found
}
