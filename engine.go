// ═══════════════════════════════════════════════════════════════════════════════
// SEARCH ENGINE: The Pipeline Glue
// ═══════════════════════════════════════════════════════════════════════════════
// The engine owns the four data structures and wires them into two flows:
//
// INDEXING FLOW:
// --------------
//  1. Store the document in the registry (replacing any prior entry)
//  2. Tokenize with case normalization, stop words KEPT
//  3. Accumulate term frequencies, positions and total length
//  4. Insert every token occurrence into the trie (weight = corpus tf)
//  5. Hand the accumulated frequencies to the inverted index
//
// QUERY FLOW:
// -----------
//  1. Tokenize the query with case normalization and stop words REMOVED
//  2. Optionally append trie completions of the final partial word
//  3. Rank candidates with TF-IDF
//  4. Apply the cursor offset, slice the page
//  5. Re-sort the page through the top-K selector and emit a next cursor
//
// STOP-WORD ASYMMETRY:
// --------------------
// Documents are indexed WITH stop words but queries strip them. Searching
// for "the" alone therefore yields nothing, while "the" still counts toward
// document length and appears in completions. This is deliberate: indexing
// keeps raw positions meaningful, querying keeps noise words from matching
// every document.
//
// CONCURRENCY:
// ------------
// The engine is single-writer, many-reader, with NO internal locking.
// Concurrent calls to UpsertDocuments / RemoveDocument / Search must be
// serialized by the caller.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"log/slog"
	"strings"
)

// Defaults for SearchOptions fields left at zero.
const (
	DefaultSearchLimit = 10
	DefaultPrefixLimit = 5
)

// DocumentInput is a raw document handed to the engine for indexing.
//
// ID is opaque to the engine; ordering (cursor pagination, score
// tie-breaking) compares it byte-wise. Metadata is carried through to
// search consumers untouched.
type DocumentInput struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// SearchOptions holds configuration options for a single search.
//
// The zero value is NOT the default configuration; use
// DefaultSearchOptions (limit 10, prefix completion on with limit 5) and
// adjust from there.
type SearchOptions struct {
	Limit          int    // Page size (default: 10)
	Cursor         string // Resume token: the docID of the last hit of the previous page
	EnablePrefix   bool   // Complete the final partial query word via the trie
	PrefixLimit    int    // Max completions to append (default: 5)
	CandidateLimit int    // Passed through to the ranker; 0 = unlimited
}

// DefaultSearchOptions returns the standard search configuration.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:        DefaultSearchLimit,
		EnablePrefix: true,
		PrefixLimit:  DefaultPrefixLimit,
	}
}

// SearchResult is one page of ranked hits.
//
// NextCursor is the resume token for the following page, or "" when this
// page is the last one. The token is the raw docID of the last hit;
// transports wrap it in their own envelope.
type SearchResult struct {
	Hits       []SearchHit
	NextCursor string
}

// Engine glues the tokenizer, index, trie and ranker into a search engine.
type Engine struct {
	index      *InvertedIndex
	trie       *Trie
	docs       map[string]DocumentInput // docID → raw document
	docLengths map[string]int           // docID → token count
}

// NewEngine creates an empty search engine.
func NewEngine() *Engine {
	return &Engine{
		index:      NewInvertedIndex(),
		trie:       NewTrie(),
		docs:       make(map[string]DocumentInput),
		docLengths: make(map[string]int),
	}
}

// UpsertDocuments indexes documents in input order.
//
// A document whose ID is already present is replaced atomically from the
// caller's viewpoint; when two input documents share an ID, the later one
// wins. Trie weights accumulate per token occurrence across upserts (the
// dictionary is never decremented, see RemoveDocument).
func (e *Engine) UpsertDocuments(docs []DocumentInput) {
	for _, doc := range docs {
		e.upsert(doc)
	}
}

func (e *Engine) upsert(doc DocumentInput) {
	slog.Info("indexing document", slog.String("docID", doc.ID))

	e.docs[doc.ID] = doc

	termFreqs := make(map[string]int)
	positionsByTerm := make(map[string][]int)
	length := 0

	// Stop words ARE indexed: only the query side strips them.
	stream := Tokenize(doc.Text, TokenizerOptions{NormalizeCase: true})
	for tok, ok := stream.Next(); ok; tok, ok = stream.Next() {
		termFreqs[tok.Term]++
		positionsByTerm[tok.Term] = append(positionsByTerm[tok.Term], tok.Position)
		e.trie.Insert(tok.Term, InsertOptions{TrackFrequency: true})
		length++
	}

	e.docLengths[doc.ID] = length
	e.index.AddDocument(doc.ID, termFreqs, positionsByTerm)
}

// RemoveDocument removes a document from the registry, the length table
// and the index. A no-op for unknown IDs.
//
// The trie is NOT pruned: completions may keep proposing terms that no
// longer hit any document. Such terms rank at zero contribution, so they
// are harmless to queries; the dictionary intentionally remembers
// everything ever indexed.
func (e *Engine) RemoveDocument(id string) {
	delete(e.docs, id)
	delete(e.docLengths, id)
	e.index.RemoveDocument(id)
}

// Has reports whether a document with the given ID is currently indexed.
func (e *Engine) Has(id string) bool {
	_, ok := e.docs[id]
	return ok
}

// Document returns the stored input for an indexed document.
func (e *Engine) Document(id string) (DocumentInput, bool) {
	doc, ok := e.docs[id]
	return doc, ok
}

// Stats exposes the underlying index statistics.
func (e *Engine) Stats() IndexStats {
	return e.index.Stats()
}

// Search runs the full query pipeline and returns one page of hits.
//
// CURSOR SEMANTICS:
// -----------------
// The cursor is the docID of the last hit of the previous page. The page
// starts just after that document's position in the CURRENT ranked list;
// a missing, empty or unmatched cursor resets to the first page. If the
// corpus changed between pages the cursor's document may have moved or
// vanished, pagination silently restarts.
//
// Paginating an unchanged corpus with a fixed limit visits every hit
// exactly once in rank order.
func (e *Engine) Search(rawQuery string, opts SearchOptions) SearchResult {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	prefixLimit := opts.PrefixLimit
	if prefixLimit <= 0 {
		prefixLimit = DefaultPrefixLimit
	}

	// STEP 1: Query terms, in order, duplicates preserved.
	var queryTerms []string
	stream := Tokenize(rawQuery, TokenizerOptions{NormalizeCase: true, RemoveStopWords: true})
	for tok, ok := stream.Next(); ok; tok, ok = stream.Next() {
		queryTerms = append(queryTerms, tok.Term)
	}

	// STEP 2: Typeahead: complete the final partial word when it is at
	// least two characters long.
	if opts.EnablePrefix && rawQuery != "" {
		if fields := strings.Fields(rawQuery); len(fields) > 0 {
			fragment := strings.ToLower(fields[len(fields)-1])
			if len(fragment) >= 2 {
				for _, completion := range e.trie.Complete(fragment, prefixLimit) {
					queryTerms = append(queryTerms, completion.Term)
				}
			}
		}
	}

	slog.Info("search",
		slog.String("query", rawQuery),
		slog.Int("terms", len(queryTerms)))

	// STEP 3: Rank the whole logical result set.
	allHits := Rank(queryTerms, RankContext{
		Index:      e.index,
		Stats:      e.index.Stats(),
		DocLengths: e.docLengths,
	}, RankOptions{CandidateLimit: opts.CandidateLimit})

	// STEP 4: Cursor offset. Unknown cursors reset to the first page.
	start := 0
	if opts.Cursor != "" {
		for i, hit := range allHits {
			if hit.DocID == opts.Cursor {
				start = i + 1
				break
			}
		}
	}

	// STEP 5: Slice the page.
	end := start + limit
	if end > len(allHits) {
		end = len(allHits)
	}
	pageHits := allHits[start:end]

	// STEP 6: Next cursor, emitted only when more hits follow a non-empty page.
	nextCursor := ""
	if start+limit < len(allHits) && len(pageHits) > 0 {
		nextCursor = pageHits[len(pageHits)-1].DocID
	}

	// STEP 7: Re-sort the page through the top-K selector. The ranker
	// already emits this order; the selector enforces the contract even
	// if the ranker's ordering ever drifts.
	pageHits = TopK(pageHits, limit, CompareHits)

	return SearchResult{Hits: pageHits, NextCursor: nextCursor}
}
