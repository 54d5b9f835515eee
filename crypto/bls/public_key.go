package bls

import (
	"fmt"

	herumi "github.com/herumi/bls-eth-go-binary/bls"
	"github.com/pkg/errors"
	"github.com/suchsoon/nimbus-eth2/config/params"
)

// PublicKey used in the BLS signature scheme.
type PublicKey struct {
	p *herumi.PublicKey
}

// PublicKeyFromBytes creates a BLS public key from a BigEndian byte slice.
func PublicKeyFromBytes(pubKey []byte) (*PublicKey, error) {
	if len(pubKey) != params.BeaconConfig().BLSPubkeyLength {
		return nil, fmt.Errorf("public key must be %d bytes", params.BeaconConfig().BLSPubkeyLength)
	}
	p := &herumi.PublicKey{}
	if err := p.Deserialize(pubKey); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal bytes into public key")
	}
	return &PublicKey{p: p}, nil
}

// Marshal a public key into a LittleEndian byte slice.
func (p *PublicKey) Marshal() []byte {
	return p.p.Serialize()
}

// Copy the public key to a new pointer reference.
func (p *PublicKey) Copy() *PublicKey {
	pub := *p.p
	return &PublicKey{p: &pub}
}

// Aggregate two public keys. This updates the receiver in place.
func (p *PublicKey) Aggregate(p2 *PublicKey) *PublicKey {
	p.p.Add(p2.p)
	return p
}
