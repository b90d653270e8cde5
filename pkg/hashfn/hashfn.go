// Package hashfn provides hash and equality functions for stripedmap keys.
//
// Every function returned here is stable for its lifetime, which is what
// the maps require of a hasher.
package hashfn

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Integer is the set of integer key types handled by Int.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Comparable returns a seeded hash for any comparable type. Each call draws
// a fresh seed, so two functions returned by Comparable disagree.
func Comparable[K comparable]() func(K) uint64 {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// Equal compares two comparable keys with ==.
func Equal[K comparable](a, b K) bool {
	return a == b
}

// String hashes a string with 64-bit MurmurHash3.
func String(s string) uint64 {
	return murmur3.Sum64([]byte(s))
}

// Bytes hashes a byte slice with 64-bit MurmurHash3.
func Bytes(b []byte) uint64 {
	return murmur3.Sum64(b)
}

// XXString hashes a string with xxHash64.
func XXString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// XXBytes hashes a byte slice with xxHash64.
func XXBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Int hashes an integer with the MurmurHash3 64-bit finalizer. Keys that
// differ only in their high bits still land in different buckets.
func Int[T Integer](v T) uint64 {
	return fmix64(uint64(v))
}

// Identity returns an integer unchanged. It suits keys that are already
// well distributed in their low bits, and tests that need to place keys in
// chosen buckets.
func Identity[T Integer](v T) uint64 {
	return uint64(v)
}

// ByName returns the string hasher registered under name: "murmur3",
// "xxhash" or "maphash". ok is false for unknown names.
func ByName(name string) (hash func(string) uint64, ok bool) {
	switch name {
	case "murmur3", "":
		return String, true
	case "xxhash":
		return XXString, true
	case "maphash":
		return Comparable[string](), true
	}
	return nil, false
}

func fmix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}
