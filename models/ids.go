package models

import "math/rand/v2"

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// VertexKeyLength and FaceKeyLength are the lengths of generated ids.
	VertexKeyLength = 4
	FaceKeyLength   = 8
)

// randomKey returns a random base-36 string of length n.
func randomKey(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return string(b)
}

// uniqueKey draws keys of length n until taken reports false.
func uniqueKey(n int, taken func(string) bool) string {
	for {
		if k := randomKey(n); !taken(k) {
			return k
		}
	}
}
