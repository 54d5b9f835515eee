// Package params defines important constants that are essential to the
// beacon chain services.
package params

import (
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
)

// BeaconChainConfig contains constant configs for node to participate in beacon chain.
type BeaconChainConfig struct {
	// Misc constants.
	TargetCommitteeSize            uint64      `yaml:"TARGET_COMMITTEE_SIZE" spec:"true"`
	MaxValidatorsPerCommittee      uint64      `yaml:"MAX_VALIDATORS_PER_COMMITTEE" spec:"true"`
	MaxCommitteesPerSlot           uint64      `yaml:"MAX_COMMITTEES_PER_SLOT" spec:"true"`
	MinGenesisActiveValidatorCount uint64      `yaml:"MIN_GENESIS_ACTIVE_VALIDATOR_COUNT" spec:"true"`
	TargetAggregatorsPerCommittee  uint64      `yaml:"TARGET_AGGREGATORS_PER_COMMITTEE" spec:"true"`
	GenesisEpoch                   types.Epoch `yaml:"GENESIS_EPOCH"`
	GenesisSlot                    types.Slot  `yaml:"GENESIS_SLOT"`
	FarFutureEpoch                 types.Epoch `yaml:"FAR_FUTURE_EPOCH"`

	// Time parameters.
	MinAttestationInclusionDelay types.Slot `yaml:"MIN_ATTESTATION_INCLUSION_DELAY" spec:"true"`
	SecondsPerSlot               uint64     `yaml:"SECONDS_PER_SLOT" spec:"true"`
	SlotsPerEpoch                types.Slot `yaml:"SLOTS_PER_EPOCH" spec:"true"`

	// Max operations per block.
	MaxAttestations        uint64 `yaml:"MAX_ATTESTATIONS" spec:"true"`
	MaxAttestationsElectra uint64 `yaml:"MAX_ATTESTATIONS_ELECTRA" spec:"true"`

	// Fork schedule.
	AltairForkEpoch    types.Epoch `yaml:"ALTAIR_FORK_EPOCH" spec:"true"`
	BellatrixForkEpoch types.Epoch `yaml:"BELLATRIX_FORK_EPOCH" spec:"true"`
	CapellaForkEpoch   types.Epoch `yaml:"CAPELLA_FORK_EPOCH" spec:"true"`
	DenebForkEpoch     types.Epoch `yaml:"DENEB_FORK_EPOCH" spec:"true"`
	ElectraForkEpoch   types.Epoch `yaml:"ELECTRA_FORK_EPOCH" spec:"true"`

	// BLS domain lengths.
	BLSSecretKeyLength int
	BLSPubkeyLength    int
	BLSSignatureLength int
}

// AttestationLookback returns the number of slots the attestation pool keeps
// candidate attestations for: min(24, SLOTS_PER_EPOCH) plus the minimum
// inclusion delay.
func (b *BeaconChainConfig) AttestationLookback() types.Slot {
	lookback := types.Slot(24)
	if b.SlotsPerEpoch < lookback {
		lookback = b.SlotsPerEpoch
	}
	return lookback + b.MinAttestationInclusionDelay
}

// Copy returns a copy of the config object.
func (b *BeaconChainConfig) Copy() *BeaconChainConfig {
	config := *b
	return &config
}

var beaconConfig = MainnetConfig()

// BeaconConfig retrieves the beacon chain config.
func BeaconConfig() *BeaconChainConfig {
	return beaconConfig
}

// OverrideBeaconConfig by replacing the config. The preferred pattern is to
// call BeaconConfig(), change the specific parameters, and then call
// OverrideBeaconConfig(c). Any subsequent calls to params.BeaconConfig() will
// return this new configuration.
func OverrideBeaconConfig(c *BeaconChainConfig) {
	beaconConfig = c
}
