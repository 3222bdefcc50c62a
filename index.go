// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS AN INVERTED INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// An inverted index is like the index at the back of a book, but for search
// engines. Given these documents:
//
//	"d1": "the quick brown fox"
//	"d2": "the lazy dog"
//	"d3": "quick brown dogs"
//
// the inverted index looks like:
//
//	"quick" → [{d1, tf=1, positions=[1]}, {d3, tf=1, positions=[0]}]
//	"brown" → [{d1, tf=1, positions=[2]}, {d3, tf=1, positions=[1]}]
//	"fox"   → [{d1, tf=1, positions=[3]}]
//	...
//
// which lets the ranker find every document containing a term without
// scanning the corpus.
//
// HYBRID STORAGE:
// ---------------
// The index keeps two structures per term:
//
//	InvertedIndex
//	├── bitmaps:  term → roaring.Bitmap of interned document numbers
//	└── postings: term → docID → {tf, positions}
//
// Roaring bitmaps answer the cheap set questions (document frequency, does
// this term hit anything, how many documents are live) in O(1) compressed
// operations; the postings maps carry the per-document detail (tf and
// positions) that scoring needs. Document identifiers are opaque strings,
// so they are interned to dense uint32 numbers for the bitmap side.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// Posting records one term's occurrences within one document.
//
// TF is the number of occurrences (always ≥ 1 for stored postings).
// Positions, when present, is strictly increasing with length TF; the
// values are raw token positions from the tokenizer.
type Posting struct {
	DocID     string
	TF        int
	Positions []int
}

// PostingsList is the materialized posting set for one term.
//
// Postings are sorted ascending by DocID (byte-wise), and DF always equals
// len(Postings). This canonical order is a contract: callers merging or
// intersecting lists rely on a single comparator.
type PostingsList struct {
	Term     string
	DF       int
	Postings []Posting
}

// IndexStats reports corpus-level statistics.
type IndexStats struct {
	DocCount int // Number of distinct documents currently indexed
}

// InvertedIndex maps terms to postings with hybrid bitmap+map storage.
//
// The index ships no internal synchronization: it is single-writer,
// many-reader, and callers must serialize mutation against reads.
type InvertedIndex struct {
	postings map[string]map[string]Posting // term → docID → posting
	bitmaps  map[string]*roaring.Bitmap    // term → interned doc numbers
	docTerms map[string][]string           // docID → distinct terms (for removal)
	docNums  map[string]uint32             // docID → interned number
	numDocs  map[uint32]string             // interned number → docID
	liveDocs *roaring.Bitmap               // interned numbers of live documents
	nextNum  uint32
}

// NewInvertedIndex creates a new empty inverted index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		postings: make(map[string]map[string]Posting),
		bitmaps:  make(map[string]*roaring.Bitmap),
		docTerms: make(map[string][]string),
		docNums:  make(map[string]uint32),
		numDocs:  make(map[uint32]string),
		liveDocs: roaring.NewBitmap(),
	}
}

// AddDocument registers a document's term frequencies and positions.
//
// REPLACE SEMANTICS:
// ------------------
// If docID is already present, every prior posting for it is removed first
// (a fresh reindex); docCount incorporates the document exactly once no
// matter how many times it is re-added.
//
// Entries with tf ≤ 0 are not stored: every stored (term, docID) pair has
// tf ≥ 1. positionsByTerm may be nil; when provided, the slice for a term
// is stored as that posting's Positions.
func (idx *InvertedIndex) AddDocument(docID string, termFreqs map[string]int, positionsByTerm map[string][]int) {
	if _, exists := idx.docTerms[docID]; exists {
		idx.removePostings(docID)
	}

	num := idx.intern(docID)

	terms := make([]string, 0, len(termFreqs))
	for term, tf := range termFreqs {
		if tf <= 0 {
			continue
		}

		posting := Posting{DocID: docID, TF: tf}
		if positionsByTerm != nil {
			posting.Positions = positionsByTerm[term]
		}

		if idx.postings[term] == nil {
			idx.postings[term] = make(map[string]Posting)
		}
		idx.postings[term][docID] = posting

		if idx.bitmaps[term] == nil {
			idx.bitmaps[term] = roaring.NewBitmap()
		}
		idx.bitmaps[term].Add(num)

		terms = append(terms, term)
	}

	idx.docTerms[docID] = terms
	idx.liveDocs.Add(num)
}

// RemoveDocument removes every posting for docID across all terms.
//
// A no-op when docID is unknown. Terms whose posting set becomes empty
// remain in the structure (lazy deletion); HasTerm reports false for them
// and GetPostings never returns them.
func (idx *InvertedIndex) RemoveDocument(docID string) {
	if _, exists := idx.docTerms[docID]; !exists {
		return
	}
	idx.removePostings(docID)
	idx.liveDocs.Remove(idx.docNums[docID])
	delete(idx.docTerms, docID)
}

// removePostings clears docID's entries from every term it touches,
// leaving the document registered (used by the replace path).
func (idx *InvertedIndex) removePostings(docID string) {
	num := idx.docNums[docID]
	for _, term := range idx.docTerms[docID] {
		if m, ok := idx.postings[term]; ok {
			delete(m, docID)
		}
		if bm, ok := idx.bitmaps[term]; ok {
			bm.Remove(num)
		}
	}
	idx.docTerms[docID] = nil
}

// intern maps a docID to a stable dense number for bitmap storage.
//
// Numbers survive removal so a remove/re-add cycle reuses the same slot.
func (idx *InvertedIndex) intern(docID string) uint32 {
	if num, ok := idx.docNums[docID]; ok {
		return num
	}
	num := idx.nextNum
	idx.nextNum++
	idx.docNums[docID] = num
	idx.numDocs[num] = docID
	return num
}

// DocID resolves an interned document number back to its identifier.
func (idx *InvertedIndex) DocID(num uint32) (string, bool) {
	docID, ok := idx.numDocs[num]
	return docID, ok
}

// CandidateDocs returns the union of the terms' document bitmaps: every
// document containing at least one of the terms.
//
// This is the fast document-level phase of query evaluation. One bitmap
// union replaces walking each term's postings just to learn the candidate
// set, and the result's cardinality is the candidate count for free. The
// returned bitmap is freshly allocated; callers may mutate it.
func (idx *InvertedIndex) CandidateDocs(terms []string) *roaring.Bitmap {
	union := roaring.NewBitmap()
	for _, term := range terms {
		if bm, ok := idx.bitmaps[term]; ok {
			union.Or(bm)
		}
	}
	return union
}

// GetPostings returns the postings list for a term in canonical order.
//
// The list is sorted ascending by DocID and DF equals len(Postings).
// Returns ok=false for unknown terms and for terms whose posting set has
// become empty: a returned list never has DF=0.
func (idx *InvertedIndex) GetPostings(term string) (PostingsList, bool) {
	// Document frequency comes straight off the bitmap cardinality; an
	// empty or absent bitmap means the term has no live postings.
	bm, ok := idx.bitmaps[term]
	if !ok || bm.IsEmpty() {
		return PostingsList{}, false
	}

	byDoc := idx.postings[term]
	list := PostingsList{
		Term:     term,
		DF:       int(bm.GetCardinality()),
		Postings: make([]Posting, 0, len(byDoc)),
	}
	for _, posting := range byDoc {
		list.Postings = append(list.Postings, posting)
	}

	// Canonical docID-ascending order. Map iteration is random, so the
	// sort is what makes the output deterministic.
	sort.Slice(list.Postings, func(i, j int) bool {
		return list.Postings[i].DocID < list.Postings[j].DocID
	})

	return list, true
}

// HasTerm reports whether at least one live document contains the term.
//
// Bitmap cardinality makes this O(1): a term emptied by removals keeps its
// (empty) bitmap around but reports false here.
func (idx *InvertedIndex) HasTerm(term string) bool {
	bm, ok := idx.bitmaps[term]
	return ok && !bm.IsEmpty()
}

// Stats returns corpus-level statistics.
//
// DocCount is the cardinality of the live-document bitmap, so it equals
// the number of distinct documents regardless of how many terms each one
// contributes.
func (idx *InvertedIndex) Stats() IndexStats {
	return IndexStats{DocCount: int(idx.liveDocs.GetCardinality())}
}
