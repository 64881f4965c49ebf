package engine

import (
	"math/bits"
	"math/rand/v2"
)

// materializeLimit is the largest space whose permutation is held in memory
// and shuffled outright. Larger spaces use a keyed Feistel network.
const materializeLimit = 1 << 16

// permutation is a bijection on [0, n).
type permutation interface {
	At(i uint64) uint64
}

// newPermutation returns a random bijection on [0, n) drawn from rng.
func newPermutation(n uint64, rng *rand.Rand, limit uint64) permutation {
	if n <= limit {
		order := make(shuffled, n)
		for i := range order {
			order[i] = uint64(i)
		}
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		return order
	}
	return newFeistel(n, rng)
}

// shuffled is a materialized permutation.
type shuffled []uint64

func (s shuffled) At(i uint64) uint64 {
	return s[i]
}

const feistelRounds = 4

// feistel permutes [0, n) by encrypting indexes over the smallest
// even-width power-of-two domain covering n and cycle-walking values that
// land outside [0, n). The domain is under four times n, so a walk takes a
// handful of steps on average.
type feistel struct {
	n        uint64
	halfBits uint
	mask     uint64
	keys     [feistelRounds]uint64
}

func newFeistel(n uint64, rng *rand.Rand) *feistel {
	width := uint(1)
	if n > 1 {
		width = uint(bits.Len64(n - 1))
	}
	half := (width + 1) / 2

	f := &feistel{
		n:        n,
		halfBits: half,
		mask:     (uint64(1) << half) - 1,
	}
	for i := range f.keys {
		f.keys[i] = rng.Uint64()
	}
	return f
}

func (f *feistel) At(i uint64) uint64 {
	x := f.encrypt(i)
	for x >= f.n {
		x = f.encrypt(x)
	}
	return x
}

func (f *feistel) encrypt(x uint64) uint64 {
	left := x >> f.halfBits
	right := x & f.mask
	for _, key := range f.keys {
		left, right = right, left^(mix64(right^key)&f.mask)
	}
	return left<<f.halfBits | right
}

// mix64 is the splitmix64 finalizer.
func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
