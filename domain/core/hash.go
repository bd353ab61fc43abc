package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// DataFingerprint identifies the exact input data of a run
type DataFingerprint Hash

func (h DataFingerprint) String() string { return Hash(h).String() }

// ComputeDataFingerprint hashes stacked observation matrices so a stored run
// can be matched back to the data it was computed from. Groups are hashed in
// order; NaN payload bits are canonicalized first.
func ComputeDataFingerprint(groups [][][]float64) DataFingerprint {
	hasher := sha256.New()
	buf := make([]byte, 8)
	for _, group := range groups {
		binary.LittleEndian.PutUint64(buf, uint64(len(group)))
		hasher.Write(buf)
		for _, obs := range group {
			for _, v := range obs {
				bits := math.Float64bits(v)
				if v != v { // canonical NaN
					bits = math.Float64bits(math.NaN())
				}
				binary.LittleEndian.PutUint64(buf, bits)
				hasher.Write(buf)
			}
		}
	}
	return DataFingerprint(hex.EncodeToString(hasher.Sum(nil)))
}
