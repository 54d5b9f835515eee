// Package hash includes all hashing functions used across the repository.
package hash

import "crypto/sha256"

// Hash defines a function that returns the sha256 checksum of the data passed in.
//
// Spec pseudocode definition:
//
//	def hash(data: bytes) -> Bytes32
func Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}
