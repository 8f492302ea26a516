package testutil

import (
	"math/rand"
)

// RandomString generates a random lowercase string given the pseudo random source.
func RandomString(rndm *rand.Rand, length int) string {
	str := make([]rune, length)
	for i := 0; i < length; i++ {
		str[i] = 'a' + rune(rndm.Intn(26))
	}
	return string(str)
}

// Shuffle returns a copy of the input in a deterministic pseudo-random order.
func Shuffle[T any](rndm *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	rndm.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
