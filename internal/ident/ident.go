// Package ident allocates the short human-readable item codes printed on
// labels. Codes are fixed-width base-36 strings over the alphabet a-z then
// 0-9, allocated in increasing order: aaa, aab, ..., aaz, aa0, aa1, ...,
// aa9, aba, ...
//
// The allocator itself is pure. Callers must pair code computation with the
// persisting insert in one serialized section, otherwise two concurrent
// creations can be handed the same code.
package ident

import "strings"

// Alphabet is the symbol set in increasing order; 'a' is zero.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultWidth is the code width used when none is configured.
const DefaultWidth = 3

// Allocator derives successive fixed-width codes. The zero value is not
// usable; construct with New.
type Allocator struct {
	width int
}

// New returns an Allocator producing codes of the given width. Widths
// outside 1..8 fall back to DefaultWidth.
func New(width int) Allocator {
	if width < 1 || width > 8 {
		width = DefaultWidth
	}
	return Allocator{width: width}
}

// Width reports the configured code width.
func (a Allocator) Width() int { return a.width }

// First returns the lowest code of the configured width.
func (a Allocator) First() string {
	return strings.Repeat(string(Alphabet[0]), a.width)
}

// Rank returns the position of code in the allocation sequence, or -1 when
// code is not a valid identifier of the configured width. Note that rank
// order differs from byte order: digits follow letters in the alphabet.
func (a Allocator) Rank(code string) int {
	code = strings.ToLower(code)
	if len(code) != a.width {
		return -1
	}
	n := 0
	for i := 0; i < len(code); i++ {
		idx := strings.IndexByte(Alphabet, code[i])
		if idx == -1 {
			return -1
		}
		n = n*len(Alphabet) + idx
	}
	return n
}

// Next returns the code that follows last. A last code that is empty, of the
// wrong width, or containing symbols outside the alphabet resets the
// sequence to First; so does carrying past the leftmost symbol. The reset is
// a deliberate recovery policy inherited from the deployed data set, not an
// error path.
func (a Allocator) Next(last string) string {
	last = strings.ToLower(last)
	if len(last) != a.width || strings.ContainsFunc(last, func(r rune) bool {
		return !strings.ContainsRune(Alphabet, r)
	}) {
		return a.First()
	}

	code := []byte(last)
	for i := a.width - 1; i >= 0; i-- {
		idx := strings.IndexByte(Alphabet, code[i])
		if idx < len(Alphabet)-1 {
			code[i] = Alphabet[idx+1]
			for j := i + 1; j < a.width; j++ {
				code[j] = Alphabet[0]
			}
			return string(code)
		}
		code[i] = Alphabet[0]
	}

	// Carried past the leftmost symbol: wrap around.
	return a.First()
}
