package flint

import (
	"fmt"
	"testing"
)

func newTestEngine(docs ...DocumentInput) *Engine {
	e := NewEngine()
	e.UpsertDocuments(docs)
	return e
}

func doc(id, text string) DocumentInput {
	return DocumentInput{ID: id, Text: text}
}

func hitIDs(hits []SearchHit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.DocID
	}
	return ids
}

// ═══════════════════════════════════════════════════════════════════════════════
// FULL-TEXT SEARCH SCENARIOS
// ═══════════════════════════════════════════════════════════════════════════════

func TestEngine_Search_BasicTFIDFOrder(t *testing.T) {
	e := newTestEngine(
		doc("d1", "hello world world"),
		doc("d2", "hello there"),
		doc("d3", "unrelated"),
	)

	result := e.Search("hello world", SearchOptions{Limit: 10, EnablePrefix: false})

	got := hitIDs(result.Hits)
	if len(got) != 2 || got[0] != "d1" || got[1] != "d2" {
		t.Fatalf("hits = %v, want [d1 d2]", got)
	}
	if result.Hits[0].Score <= result.Hits[1].Score {
		t.Errorf("score(d1) = %f not greater than score(d2) = %f",
			result.Hits[0].Score, result.Hits[1].Score)
	}
	if result.NextCursor != "" {
		t.Errorf("NextCursor = %q on a complete page, want empty", result.NextCursor)
	}
}

func TestEngine_Search_PrefixCompletionContributes(t *testing.T) {
	e := newTestEngine(
		doc("d1", "typescript"),
		doc("d2", "type theory"),
		doc("d3", "python"),
	)

	result := e.Search("typ", SearchOptions{Limit: 10, EnablePrefix: true, PrefixLimit: 10})

	found := make(map[string]bool)
	for _, id := range hitIDs(result.Hits) {
		found[id] = true
	}
	if !found["d1"] || !found["d2"] {
		t.Errorf("hits = %v, want both d1 and d2", hitIDs(result.Hits))
	}
	if found["d3"] {
		t.Errorf("hits = %v include d3, which shares no prefix", hitIDs(result.Hits))
	}
}

func TestEngine_Search_FulltextModeIgnoresPrefixes(t *testing.T) {
	e := newTestEngine(doc("d1", "typescript"))

	result := e.Search("typ", SearchOptions{Limit: 10, EnablePrefix: false})
	if len(result.Hits) != 0 {
		t.Errorf("fulltext search for a bare prefix returned %v", hitIDs(result.Hits))
	}
}

func TestEngine_Search_ShortFragmentNotCompleted(t *testing.T) {
	e := newTestEngine(doc("d1", "typescript"))

	// Single-character fragments are below the completion threshold.
	result := e.Search("t", SearchOptions{Limit: 10, EnablePrefix: true})
	if len(result.Hits) != 0 {
		t.Errorf("one-character prefix query returned %v", hitIDs(result.Hits))
	}
}

func TestEngine_Search_StopWordAsymmetry(t *testing.T) {
	e := newTestEngine(doc("d1", "the quick fox"))

	// Query side strips stop words: "the" alone matches nothing.
	result := e.Search("the", SearchOptions{Limit: 10, EnablePrefix: false})
	if len(result.Hits) != 0 {
		t.Errorf("stop-word query returned %v, want none", hitIDs(result.Hits))
	}

	// But the document side indexed it: prefix completion of "th" reaches
	// the indexed term "the" and thus the document.
	result = e.Search("th", SearchOptions{Limit: 10, EnablePrefix: true, PrefixLimit: 5})
	if got := hitIDs(result.Hits); len(got) != 1 || got[0] != "d1" {
		t.Errorf("prefix search over indexed stop word = %v, want [d1]", got)
	}
}

func TestEngine_Search_EmptyQuery(t *testing.T) {
	e := newTestEngine(doc("d1", "content"))

	result := e.Search("", DefaultSearchOptions())
	if len(result.Hits) != 0 || result.NextCursor != "" {
		t.Errorf("empty query = (%v, %q), want no hits and no cursor",
			hitIDs(result.Hits), result.NextCursor)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// CURSOR PAGINATION
// ═══════════════════════════════════════════════════════════════════════════════

func TestEngine_Search_CursorPagination(t *testing.T) {
	e := newTestEngine(
		doc("a", "cat"),
		doc("b", "cat cat"),
		doc("c", "cat cat cat"),
	)

	// Page 1: [c, b]. Higher tf wins even after length normalization.
	page1 := e.Search("cat", SearchOptions{Limit: 2, EnablePrefix: false})
	if got := hitIDs(page1.Hits); len(got) != 2 || got[0] != "c" || got[1] != "b" {
		t.Fatalf("page 1 = %v, want [c b]", got)
	}
	if page1.NextCursor == "" {
		t.Fatal("page 1 has no NextCursor, want one")
	}

	// Page 2: [a], no further cursor.
	page2 := e.Search("cat", SearchOptions{Limit: 2, EnablePrefix: false, Cursor: page1.NextCursor})
	if got := hitIDs(page2.Hits); len(got) != 1 || got[0] != "a" {
		t.Fatalf("page 2 = %v, want [a]", got)
	}
	if page2.NextCursor != "" {
		t.Errorf("page 2 NextCursor = %q, want empty", page2.NextCursor)
	}
}

func TestEngine_Search_CursorRoundTripVisitsEveryHitOnce(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 9; i++ {
		text := ""
		for j := 0; j <= i; j++ {
			text += "topic "
		}
		e.UpsertDocuments([]DocumentInput{doc(fmt.Sprintf("doc-%d", i), text)})
	}

	reference := e.Search("topic", SearchOptions{Limit: 100, EnablePrefix: false})

	var visited []string
	cursor := ""
	for {
		page := e.Search("topic", SearchOptions{Limit: 2, EnablePrefix: false, Cursor: cursor})
		visited = append(visited, hitIDs(page.Hits)...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	want := hitIDs(reference.Hits)
	if len(visited) != len(want) {
		t.Fatalf("visited %d hits paging, want %d: %v vs %v", len(visited), len(want), visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("position %d: paged %q, want %q", i, visited[i], want[i])
		}
	}
}

func TestEngine_Search_UnknownCursorResets(t *testing.T) {
	e := newTestEngine(
		doc("a", "cat"),
		doc("b", "cat cat"),
	)

	fresh := e.Search("cat", SearchOptions{Limit: 10, EnablePrefix: false})
	reset := e.Search("cat", SearchOptions{Limit: 10, EnablePrefix: false, Cursor: "no-such-doc"})

	if len(reset.Hits) != len(fresh.Hits) {
		t.Fatalf("unknown cursor returned %d hits, want full first page of %d",
			len(reset.Hits), len(fresh.Hits))
	}
	for i := range fresh.Hits {
		if reset.Hits[i] != fresh.Hits[i] {
			t.Errorf("hit %d = %+v, want %+v (unknown cursor must reset)", i, reset.Hits[i], fresh.Hits[i])
		}
	}
}

func TestEngine_Search_NoCursorOnFinalPartialPage(t *testing.T) {
	e := newTestEngine(doc("only", "solo term"))

	result := e.Search("solo", SearchOptions{Limit: 10, EnablePrefix: false})
	if result.NextCursor != "" {
		t.Errorf("NextCursor = %q when every hit fit the page, want empty", result.NextCursor)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE: UPSERT / REMOVE
// ═══════════════════════════════════════════════════════════════════════════════

func TestEngine_UpsertDocuments_ReplaceIsIdempotentOnIndex(t *testing.T) {
	d := doc("d1", "alpha beta alpha")

	e := newTestEngine(d)
	single := e.Search("alpha", SearchOptions{Limit: 10, EnablePrefix: false})

	e.UpsertDocuments([]DocumentInput{d})
	double := e.Search("alpha", SearchOptions{Limit: 10, EnablePrefix: false})

	if len(single.Hits) != 1 || len(double.Hits) != 1 {
		t.Fatalf("hit counts = %d and %d, want 1 and 1", len(single.Hits), len(double.Hits))
	}
	if single.Hits[0] != double.Hits[0] {
		t.Errorf("re-upsert changed the hit: %+v vs %+v", single.Hits[0], double.Hits[0])
	}
	if got := e.Stats().DocCount; got != 1 {
		t.Errorf("DocCount = %d after re-upsert, want 1", got)
	}
}

func TestEngine_UpsertDocuments_LaterDuplicateWinsWithinBatch(t *testing.T) {
	e := newTestEngine(
		doc("d1", "first version"),
		doc("d1", "second version"),
	)

	if got := e.Stats().DocCount; got != 1 {
		t.Fatalf("DocCount = %d, want 1", got)
	}

	if hits := e.Search("first", SearchOptions{Limit: 10, EnablePrefix: false}).Hits; len(hits) != 0 {
		t.Errorf("overwritten content still matches: %v", hitIDs(hits))
	}
	if hits := e.Search("second", SearchOptions{Limit: 10, EnablePrefix: false}).Hits; len(hits) != 1 {
		t.Errorf("winning content missing: %v", hitIDs(hits))
	}
}

func TestEngine_RemoveDocument(t *testing.T) {
	e := newTestEngine(
		doc("keep", "shared term"),
		doc("drop", "shared term"),
	)

	e.RemoveDocument("drop")

	if e.Has("drop") {
		t.Error("Has(\"drop\") = true after removal")
	}
	if !e.Has("keep") {
		t.Error("removal disturbed an unrelated document")
	}
	if got := e.Stats().DocCount; got != 1 {
		t.Errorf("DocCount = %d, want 1", got)
	}

	hits := e.Search("shared", SearchOptions{Limit: 10, EnablePrefix: false}).Hits
	if got := hitIDs(hits); len(got) != 1 || got[0] != "keep" {
		t.Errorf("hits after removal = %v, want [keep]", got)
	}
}

func TestEngine_RemoveDocument_TrieNotPruned(t *testing.T) {
	e := newTestEngine(doc("d1", "ephemeral"))
	e.RemoveDocument("d1")

	// The dictionary still completes the dead term; ranking scores it at
	// zero contribution so no hits surface.
	result := e.Search("ephem", SearchOptions{Limit: 10, EnablePrefix: true, PrefixLimit: 5})
	if len(result.Hits) != 0 {
		t.Errorf("removed document resurfaced via completion: %v", hitIDs(result.Hits))
	}
}

func TestEngine_DocumentRegistry(t *testing.T) {
	meta := map[string]any{"lang": "en"}
	e := newTestEngine(DocumentInput{ID: "d1", Text: "hello", Metadata: meta})

	stored, ok := e.Document("d1")
	if !ok {
		t.Fatal("Document(\"d1\") not found")
	}
	if stored.Text != "hello" {
		t.Errorf("stored text = %q, want %q", stored.Text, "hello")
	}
	if stored.Metadata["lang"] != "en" {
		t.Errorf("metadata not carried through: %v", stored.Metadata)
	}

	if _, ok := e.Document("missing"); ok {
		t.Error("Document(\"missing\") = ok")
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// CANDIDATE LIMIT PASS-THROUGH
// ═══════════════════════════════════════════════════════════════════════════════

func TestEngine_Search_CandidateLimit(t *testing.T) {
	e := NewEngine()
	for i := 1; i <= 30; i++ {
		text := ""
		for j := 0; j < i; j++ {
			text += "common "
		}
		e.UpsertDocuments([]DocumentInput{doc(fmt.Sprintf("doc-%02d", i), text)})
	}

	result := e.Search("common", SearchOptions{Limit: 100, EnablePrefix: false, CandidateLimit: 10})

	if len(result.Hits) != 10 {
		t.Fatalf("got %d hits with CandidateLimit 10, want 10", len(result.Hits))
	}
	// Survivors are the highest UN-normalized scores: tf 30..21.
	for _, hit := range result.Hits {
		var n int
		fmt.Sscanf(hit.DocID, "doc-%d", &n)
		if n <= 20 {
			t.Errorf("hit %q survived the prune but tf=%d is not in the top 10", hit.DocID, n)
		}
	}
}
