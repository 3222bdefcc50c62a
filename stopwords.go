package flint

// isStopWord checks if a term is on the built-in English stop list.
//
// Uses a hash map for O(1) lookup with struct{} values (0 bytes per entry).
func isStopWord(term string) bool {
	_, exists := englishStopWords[term]
	return exists
}

// englishStopWords is the fixed query-side stop list.
//
// This is the classic 33-word analyzer list (articles, prepositions,
// conjunctions, auxiliaries). It is deliberately short: documents are
// indexed WITH their stop words and only queries strip them, so an
// aggressive list would silently drop meaningful words from queries.
var englishStopWords = map[string]struct{}{
	"a":     {},
	"an":    {},
	"and":   {},
	"are":   {},
	"as":    {},
	"at":    {},
	"be":    {},
	"but":   {},
	"by":    {},
	"for":   {},
	"if":    {},
	"in":    {},
	"into":  {},
	"is":    {},
	"it":    {},
	"no":    {},
	"not":   {},
	"of":    {},
	"on":    {},
	"or":    {},
	"such":  {},
	"that":  {},
	"the":   {},
	"their": {},
	"then":  {},
	"there": {},
	"these": {},
	"they":  {},
	"this":  {},
	"to":    {},
	"was":   {},
	"will":  {},
	"with":  {}}
