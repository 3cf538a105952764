package districting

import "math/rand"

// DefaultSeed is the seed drivers use when none is configured.
const DefaultSeed int64 = 22

// NewRand returns a deterministic generator for seed. The generator is not
// safe for concurrent use; give each worker its own via DeriveSeed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// DeriveSeed mixes a parent seed and a stream number into an independent
// seed (SplitMix64 finalizer), so start i of a multi-start run is replayable
// from the parent seed alone.
func DeriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
