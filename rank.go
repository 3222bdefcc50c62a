// ═══════════════════════════════════════════════════════════════════════════════
// RANKING: TF-IDF Union Scoring
// ═══════════════════════════════════════════════════════════════════════════════
// Every document containing at least one query term is a candidate (union
// semantics, not intersection), and each term contributes tf × idf to its
// candidates' scores.
//
// CANDIDATE GENERATION WITH ROARING BITMAPS:
// ------------------------------------------
// The candidate set is built in a document-level phase before any scoring:
// the index keeps a compressed bitmap of document numbers per term, and one
// bitmap union across the query's terms yields every candidate at once.
// The postings lists are then walked only to accumulate scores, never to
// discover which documents exist.
//
// IDF FORMULA:
// ------------
//
//	idf(df) = ln((N + s) / (df + s)) + 1
//
// Where:
//
//	N  = total number of documents
//	df = number of documents containing the term
//	s  = smoothing constant (default 1)
//
// Rare terms get high idf, common terms trend toward 1. The formula is part
// of the scoring contract: two engines over the same corpus must agree on
// every score bit-for-bit.
//
// EXAMPLE CALCULATION:
// --------------------
// Corpus: d1="hello world world", d2="hello there", d3="unrelated" (N=3)
// Query: "hello world"
//
//	idf(hello) = ln(4/3) + 1 ≈ 1.288   (df=2)
//	idf(world) = ln(4/2) + 1 ≈ 1.693   (df=1)
//
//	score(d1) = 1×1.288 + 2×1.693 = 4.674, then / √3 ≈ 2.699
//	score(d2) = 1×1.288            = 1.288, then / √2 ≈ 0.911
//
// Result order: [d1, d2]. Equal scores would tie-break by ascending docID.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"math"
	"sort"
)

// DefaultIDFSmoothing is the smoothing constant used when RankOptions
// leaves IDFSmoothing at zero.
const DefaultIDFSmoothing = 1.0

// SearchHit is one scored document in a ranked result list.
type SearchHit struct {
	DocID string
	Score float64
}

// RankContext carries the corpus state a single Rank call scores against.
//
// The index is borrowed for the duration of the call; Rank stores no
// reference to it. DocLengths is optional: when nil, no length
// normalization is applied.
type RankContext struct {
	Index      *InvertedIndex
	Stats      IndexStats
	DocLengths map[string]int
}

// RankOptions holds configuration options for ranking.
type RankOptions struct {
	// IDFSmoothing is the s in ln((N+s)/(df+s))+1. Zero means
	// DefaultIDFSmoothing; an explicit smoothing of zero is not
	// representable.
	IDFSmoothing float64

	// CandidateLimit, when positive, prunes the candidate set to the
	// top CandidateLimit documents by UN-normalized score before length
	// normalization runs. Pruning and the final ordering therefore use
	// different scores, and a document that would rank high after
	// normalization can be pruned away.
	CandidateLimit int
}

// Rank scores every document matching at least one query term.
//
// ALGORITHM:
// ----------
//  1. Fetch each query term's postings; drop absent terms. Duplicates in
//     queryTerms are meaningful: a term appearing twice contributes twice.
//  2. Sort the retained lists by ascending df (stable, so duplicate terms
//     keep their query order). Shortest-first processing keeps partial-sum
//     checkpoints deterministic.
//  3. Candidate generation: one bitmap union over the retained terms'
//     document bitmaps yields the candidate set and its cardinality,
//     without walking a single postings entry.
//  4. Union-score: every posting adds tf × idf to its candidate.
//  5. Optional candidate prune on the un-normalized scores.
//  6. Length normalization: score / √L when the document's length is known
//     and positive (cosine-like, no query norm).
//  7. Final sort by (−score, docID ascending).
//
// An empty query or an empty corpus yields no hits; unknown terms simply
// contribute nothing.
func Rank(queryTerms []string, ctx RankContext, opts RankOptions) []SearchHit {
	if len(queryTerms) == 0 || ctx.Stats.DocCount == 0 {
		return nil
	}

	smoothing := opts.IDFSmoothing
	if smoothing == 0 {
		smoothing = DefaultIDFSmoothing
	}
	n := float64(ctx.Stats.DocCount)

	// STEP 1: Retain the terms that actually hit the index.
	type scoredList struct {
		list PostingsList
		idf  float64
	}
	retained := make([]scoredList, 0, len(queryTerms))
	for _, term := range queryTerms {
		list, ok := ctx.Index.GetPostings(term)
		if !ok || list.DF == 0 {
			continue
		}
		idf := math.Log((n+smoothing)/(float64(list.DF)+smoothing)) + 1
		retained = append(retained, scoredList{list: list, idf: idf})
	}

	// STEP 2: Shortest list first; stable so equal-df lists keep query order.
	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].list.DF < retained[j].list.DF
	})

	// STEP 3: Candidate generation via bitmap union. Every document
	// holding at least one retained term shows up in one compressed OR
	// across the terms' bitmaps; the postings are walked afterwards only
	// to score, never to discover candidates.
	terms := make([]string, len(retained))
	for i, sl := range retained {
		terms[i] = sl.list.Term
	}
	candidates := ctx.Index.CandidateDocs(terms)

	scores := make(map[string]float64, candidates.GetCardinality())
	iter := candidates.Iterator()
	for iter.HasNext() {
		if docID, ok := ctx.Index.DocID(iter.Next()); ok {
			scores[docID] = 0
		}
	}

	// STEP 4: Union scoring over the candidate set. Every posting's
	// document is a candidate by construction, and tf ≥ 1 with idf > 0
	// keeps every candidate's final score positive.
	for _, sl := range retained {
		for _, posting := range sl.list.Postings {
			scores[posting.DocID] += float64(posting.TF) * sl.idf
		}
	}

	hits := make([]SearchHit, 0, len(scores))
	for docID, score := range scores {
		hits = append(hits, SearchHit{DocID: docID, Score: score})
	}

	// STEP 5: Candidate prune on un-normalized scores; the bitmap's
	// cardinality is the distinct-candidate count the limit compares to.
	if opts.CandidateLimit > 0 && int(candidates.GetCardinality()) > opts.CandidateLimit {
		sortHits(hits)
		hits = hits[:opts.CandidateLimit]
	}

	// STEP 6: Length normalization.
	if ctx.DocLengths != nil {
		for i := range hits {
			if length := ctx.DocLengths[hits[i].DocID]; length > 0 {
				hits[i].Score /= math.Sqrt(float64(length))
			}
		}
	}

	// STEP 7: Canonical output order.
	sortHits(hits)
	return hits
}

// sortHits orders hits by (−score, docID ascending).
//
// Equal scores tie-break byte-wise on docID, which is what makes ranked
// output deterministic for identical corpus state and query.
func sortHits(hits []SearchHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
}

// CompareHits is the canonical hit comparator: better hits first.
//
// Returns a negative value when a ranks before b: higher score first,
// ascending docID on ties. This is the comparator the engine hands to the
// top-K selector.
func CompareHits(a, b SearchHit) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	case a.DocID < b.DocID:
		return -1
	case a.DocID > b.DocID:
		return 1
	default:
		return 0
	}
}
