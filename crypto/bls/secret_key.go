package bls

import (
	"fmt"

	herumi "github.com/herumi/bls-eth-go-binary/bls"
	"github.com/pkg/errors"
	"github.com/suchsoon/nimbus-eth2/config/params"
)

// SecretKey used in the BLS signature scheme.
type SecretKey struct {
	p *herumi.SecretKey
}

// RandKey creates a new private key using a random input.
func RandKey() *SecretKey {
	secKey := &herumi.SecretKey{}
	secKey.SetByCSPRNG()
	return &SecretKey{p: secKey}
}

// SecretKeyFromBytes creates a BLS private key from a BigEndian byte slice.
func SecretKeyFromBytes(privKey []byte) (*SecretKey, error) {
	if len(privKey) != params.BeaconConfig().BLSSecretKeyLength {
		return nil, fmt.Errorf("secret key must be %d bytes", params.BeaconConfig().BLSSecretKeyLength)
	}
	secKey := &herumi.SecretKey{}
	if err := secKey.Deserialize(privKey); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal bytes into secret key")
	}
	return &SecretKey{p: secKey}, nil
}

// PublicKey obtains the public key corresponding to the BLS secret key.
func (s *SecretKey) PublicKey() *PublicKey {
	return &PublicKey{p: s.p.GetPublicKey()}
}

// Sign a message using a secret key.
func (s *SecretKey) Sign(msg []byte) *Signature {
	return &Signature{s: s.p.SignByte(msg)}
}

// Marshal a secret key into a LittleEndian byte slice.
func (s *SecretKey) Marshal() []byte {
	return s.p.Serialize()
}
