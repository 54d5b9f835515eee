package bls

import (
	"fmt"

	herumi "github.com/herumi/bls-eth-go-binary/bls"
	"github.com/pkg/errors"
	"github.com/suchsoon/nimbus-eth2/config/params"
)

// Signature used in the BLS signature scheme. The deserialized form is kept
// so that repeated aggregation does not pay the decompression cost again.
type Signature struct {
	s *herumi.Sign
}

// SignatureFromBytes creates a BLS signature from a LittleEndian byte slice.
func SignatureFromBytes(sig []byte) (*Signature, error) {
	if len(sig) != params.BeaconConfig().BLSSignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes", params.BeaconConfig().BLSSignatureLength)
	}
	signature := &herumi.Sign{}
	if err := signature.Deserialize(sig); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal bytes into signature")
	}
	return &Signature{s: signature}, nil
}

// Verify a bls signature given a public key and a message.
func (s *Signature) Verify(pubKey *PublicKey, msg []byte) bool {
	return s.s.VerifyByte(pubKey.p, msg)
}

// Marshal a signature into a LittleEndian byte slice.
func (s *Signature) Marshal() []byte {
	return s.s.Serialize()
}

// Copy returns a full deep copy of a signature.
func (s *Signature) Copy() *Signature {
	sign := *s.s
	return &Signature{s: &sign}
}

// AggregateSignatures converts a list of signatures into a single, aggregated sig.
func AggregateSignatures(sigs []*Signature) *Signature {
	if len(sigs) == 0 {
		return nil
	}
	signature := *sigs[0].Copy().s
	for i := 1; i < len(sigs); i++ {
		signature.Add(sigs[i].s)
	}
	return &Signature{s: &signature}
}

// AggregateSignature is a signature sum that can be extended one cooked
// signature at a time.
type AggregateSignature struct {
	s herumi.Sign
}

// NewAggregateSignature creates a running aggregate seeded with a single
// cooked signature.
func NewAggregateSignature(sig *Signature) *AggregateSignature {
	return &AggregateSignature{s: *sig.s}
}

// Aggregate adds a cooked signature into the running sum.
func (a *AggregateSignature) Aggregate(sig *Signature) {
	a.s.Add(sig.s)
}

// Copy returns a full deep copy of the running aggregate.
func (a *AggregateSignature) Copy() *AggregateSignature {
	agg := *a
	return &agg
}

// Marshal finalizes the aggregate into a LittleEndian byte slice.
func (a *AggregateSignature) Marshal() []byte {
	return a.s.Serialize()
}
