// ═══════════════════════════════════════════════════════════════════════════════
// TEXT ANALYSIS OVERVIEW
// ═══════════════════════════════════════════════════════════════════════════════
// Tokenization transforms raw text into positioned tokens that feed both the
// indexing and the query side of the engine.
//
// ANALYSIS PIPELINE:
// ------------------
//  1. Scanning       → maximal runs of ASCII alphanumerics become tokens
//  2. Lowercasing    → normalize case ("Quick" → "quick")
//  3. Stop word removal → drop common words ("the", "a", etc.) when asked
//  4. Stemming       → reduce words to root form ("running" → "run"), opt-in
//
// EXAMPLE TRANSFORMATION:
// -----------------------
// Input:  "The Quick-Brown FOX!"
// Step 1: ["The", "Quick", "Brown", "FOX"]      (scan: '-', ' ', '!' separate)
// Step 2: ["the", "quick", "brown", "fox"]      (lowercase)
// Step 3: ["quick", "brown", "fox"]             (stop word "the" removed)
//
// POSITIONS ARE RAW POSITIONS:
// ----------------------------
// Every scanned token consumes a position number, whether or not it is
// emitted. Filtering "the" out of "the quick fox" yields
//
//	{quick, position 1} {fox, position 2}
//
// and NOT positions 0 and 1. Position numbers always refer back to the raw
// token index in the source text, so two tokenizations of the same text with
// different filters still agree on where each surviving word sits.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"strings"

	snowballeng "github.com/kljensen/snowball/english"
)

// Token is a single term occurrence produced by the tokenizer.
//
// Position is the 0-based raw token index within the source text (see the
// package note above: filtered tokens still consume positions). StartOffset
// and EndOffset are byte offsets into the original text such that
// text[StartOffset:EndOffset] is the un-normalized token.
type Token struct {
	Term        string
	Position    int
	StartOffset int
	EndOffset   int
}

// TokenizerOptions holds configuration options for tokenization.
//
// The zero value is NOT the default configuration; use
// DefaultTokenizerOptions for the standard pipeline (case normalization on,
// stop words kept, no stemming).
type TokenizerOptions struct {
	NormalizeCase   bool // Lowercase every token (default: true)
	RemoveStopWords bool // Drop tokens on the built-in English stop list (default: false)
	Stem            bool // Apply Porter2 stemming after normalization (default: false)
}

// DefaultTokenizerOptions returns the standard tokenizer configuration.
func DefaultTokenizerOptions() TokenizerOptions {
	return TokenizerOptions{
		NormalizeCase:   true,
		RemoveStopWords: false,
		Stem:            false,
	}
}

// TokenStream is a lazy, finite, non-restartable sequence of tokens.
//
// Each call to Tokenize yields a fresh stream; consuming it does not
// materialize the full token list, so arbitrarily large texts can be
// indexed incrementally.
//
// Example:
//
//	stream := Tokenize("quick brown fox", DefaultTokenizerOptions())
//	for tok, ok := stream.Next(); ok; tok, ok = stream.Next() {
//	    fmt.Println(tok.Term, tok.Position)
//	}
type TokenStream struct {
	text string
	opts TokenizerOptions
	cur  int // byte cursor into text
	pos  int // next raw token position
}

// Tokenize creates a token stream over text with the given options.
//
// Deterministic: the same (text, options) pair always yields the same
// token sequence.
//
// SCANNING RULES:
// ---------------
// A token is a maximal run of ASCII alphanumerics (0-9, A-Z, a-z). Every
// other byte is a separator, which makes the scanner safe on malformed
// UTF-8: bytes outside the ASCII alphanumeric range simply separate tokens.
//
//	"user@email.com" → ["user", "email", "com"]
//	"price: $9.99"   → ["price", "9", "99"]
//	"café"           → ["caf"]  (the accented byte pair separates)
func Tokenize(text string, opts TokenizerOptions) *TokenStream {
	return &TokenStream{text: text, opts: opts}
}

// Next returns the next token in the stream, or ok=false once the stream is
// exhausted. Exhausted streams keep returning ok=false.
func (ts *TokenStream) Next() (Token, bool) {
	for {
		// Skip separator bytes.
		for ts.cur < len(ts.text) && !isAlphanumeric(ts.text[ts.cur]) {
			ts.cur++
		}
		if ts.cur >= len(ts.text) {
			return Token{}, false
		}

		// Consume a maximal alphanumeric run.
		start := ts.cur
		for ts.cur < len(ts.text) && isAlphanumeric(ts.text[ts.cur]) {
			ts.cur++
		}

		// The position is consumed here, BEFORE any filtering, so that
		// filtered tokens still advance the position counter.
		position := ts.pos
		ts.pos++

		term := ts.text[start:ts.cur]
		if ts.opts.NormalizeCase {
			term = strings.ToLower(term)
		}
		if ts.opts.RemoveStopWords && isStopWord(term) {
			continue
		}
		if ts.opts.Stem {
			term = snowballeng.Stem(term, false)
		}

		return Token{
			Term:        term,
			Position:    position,
			StartOffset: start,
			EndOffset:   ts.cur,
		}, true
	}
}

// isAlphanumeric reports whether b is an ASCII letter or digit.
func isAlphanumeric(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}
