package words

import "math/rand"

// Shuffle returns a uniform random permutation of words (Fisher-Yates).
// The input is not modified. The rand source is injected so exam tests can
// fix the permutation.
func Shuffle(words []string, rng *rand.Rand) []string {
	out := make([]string, len(words))
	copy(out, words)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
