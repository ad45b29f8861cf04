package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// DefaultTestSize is the held-out fraction used by training.
const DefaultTestSize = 0.2

// DefaultSeed makes splits reproducible across runs.
const DefaultSeed = 42

// Split shuffles the indices 0..n-1 with a seeded generator and partitions them.
// The test partition holds ceil(testSize*n) indices. The same inputs always
// produce the same partition.
func Split(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("split: need at least 2 samples, got %d", n)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("split: test size %v must be between 0 and 1", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible shuffle, not security
	perm := rng.Perm(n)

	return perm[nTest:], perm[:nTest], nil
}
