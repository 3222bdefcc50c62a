package flint

import (
	"sort"
	"strings"
	"testing"
)

type scoredItem struct {
	id    string
	score float64
}

// compareScored ranks by score descending, then id ascending.
func compareScored(a, b scoredItem) int {
	switch {
	case a.score > b.score:
		return -1
	case a.score < b.score:
		return 1
	default:
		return strings.Compare(a.id, b.id)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// TOP-K SELECTION TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestTopK_SelectsBestWithTies(t *testing.T) {
	items := []scoredItem{
		{id: "b", score: 1},
		{id: "a", score: 1},
		{id: "c", score: 2},
	}

	got := TopK(items, 2, compareScored)

	want := []scoredItem{{id: "c", score: 2}, {id: "a", score: 1}}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTopK_NonPositiveK(t *testing.T) {
	items := []scoredItem{{id: "a", score: 1}}

	if got := TopK(items, 0, compareScored); len(got) != 0 {
		t.Errorf("TopK with k=0 returned %v, want empty", got)
	}
	if got := TopK(items, -3, compareScored); len(got) != 0 {
		t.Errorf("TopK with k=-3 returned %v, want empty", got)
	}
}

func TestTopK_KLargerThanInput(t *testing.T) {
	items := []scoredItem{
		{id: "x", score: 3},
		{id: "y", score: 1},
		{id: "z", score: 2},
	}

	got := TopK(items, 10, compareScored)

	if len(got) != 3 {
		t.Fatalf("got %d items, want all 3", len(got))
	}
	wantOrder := []string{"x", "z", "y"}
	for i, item := range got {
		if item.id != wantOrder[i] {
			t.Errorf("item %d = %q, want %q", i, item.id, wantOrder[i])
		}
	}
}

func TestTopK_OutputMonotoneUnderComparator(t *testing.T) {
	items := []scoredItem{
		{"g", 4.5}, {"a", 1.0}, {"f", 4.5}, {"b", 9.2}, {"e", 0.3},
		{"c", 7.7}, {"d", 9.2}, {"h", 2.1}, {"i", 6.6}, {"j", 5.0},
	}

	for k := 1; k <= len(items)+2; k++ {
		got := TopK(items, k, compareScored)

		wantLen := k
		if wantLen > len(items) {
			wantLen = len(items)
		}
		if len(got) != wantLen {
			t.Fatalf("k=%d: got %d items, want %d", k, len(got), wantLen)
		}
		for i := 1; i < len(got); i++ {
			if compareScored(got[i-1], got[i]) > 0 {
				t.Errorf("k=%d: output not monotone at %d: %+v after %+v", k, i, got[i], got[i-1])
			}
		}
	}
}

func TestTopK_MatchesFullSortPrefix(t *testing.T) {
	items := []scoredItem{
		{"g", 4.5}, {"a", 1.0}, {"f", 4.5}, {"b", 9.2}, {"e", 0.3},
		{"c", 7.7}, {"d", 9.2}, {"h", 2.1}, {"i", 6.6}, {"j", 5.0},
	}

	// The heap selection must agree with sorting everything and taking
	// the first k.
	sorted := append([]scoredItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return compareScored(sorted[i], sorted[j]) < 0 })

	for _, k := range []int{1, 3, 5, 10} {
		got := TopK(items, k, compareScored)
		for i := range got {
			if got[i] != sorted[i] {
				t.Errorf("k=%d: item %d = %+v, want %+v", k, i, got[i], sorted[i])
			}
		}
	}
}

func TestTopK_DuplicatesPreserved(t *testing.T) {
	items := []scoredItem{
		{id: "dup", score: 5},
		{id: "dup", score: 5},
		{id: "low", score: 1},
	}

	got := TopK(items, 2, compareScored)

	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	for i, item := range got {
		if item.id != "dup" {
			t.Errorf("item %d = %+v, want the duplicate pair", i, item)
		}
	}
}

func TestTopK_EmptyInput(t *testing.T) {
	if got := TopK(nil, 5, compareScored); len(got) != 0 {
		t.Errorf("TopK over empty input returned %v", got)
	}
}
