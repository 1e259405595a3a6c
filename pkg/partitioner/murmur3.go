package partitioner

import (
	"math/rand/v2"

	"github.com/anthanhphan/go-token-locator/pkg/locator"
	"github.com/spaolacci/murmur3"
)

// Murmur3Partitioner maps keys to tokens with the first half of the
// 128-bit Murmur3 hash.
type Murmur3Partitioner struct{}

func NewMurmur3Partitioner() *Murmur3Partitioner {
	return &Murmur3Partitioner{}
}

// GetToken returns the ring position of key.
func (p *Murmur3Partitioner) GetToken(key []byte) locator.Token {
	h1, _ := murmur3.Sum128(key)
	return normalize(locator.Token(int64(h1)))
}

// RandomTokens returns n distinct random tokens, for a node joining without
// configured tokens.
func (p *Murmur3Partitioner) RandomTokens(n int) []locator.Token {
	tokens := make([]locator.Token, 0, n)
	seen := make(map[locator.Token]struct{}, n)
	for len(tokens) < n {
		t := normalize(locator.Token(int64(rand.Uint64())))
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}
	return tokens
}

// MinToken is reserved as the ring's minimum and never assigned to a key.
func normalize(t locator.Token) locator.Token {
	if t == locator.MinToken {
		return locator.MaxToken
	}
	return t
}
