package params

var mainnetBeaconConfig = &BeaconChainConfig{
	// Misc constants.
	TargetCommitteeSize:            128,
	MaxValidatorsPerCommittee:      2048,
	MaxCommitteesPerSlot:           64,
	MinGenesisActiveValidatorCount: 16384,
	TargetAggregatorsPerCommittee:  16,
	GenesisEpoch:                   0,
	GenesisSlot:                    0,
	FarFutureEpoch:                 1<<64 - 1,

	// Time parameter constants.
	MinAttestationInclusionDelay: 1,
	SecondsPerSlot:               12,
	SlotsPerEpoch:                32,

	// Max operations per block constants.
	MaxAttestations:        128,
	MaxAttestationsElectra: 8,

	// Fork schedule (mainnet).
	AltairForkEpoch:    74240,
	BellatrixForkEpoch: 144896,
	CapellaForkEpoch:   194048,
	DenebForkEpoch:     269568,
	ElectraForkEpoch:   364032,

	// BLS domain lengths.
	BLSSecretKeyLength: 32,
	BLSPubkeyLength:    48,
	BLSSignatureLength: 96,
}

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *BeaconChainConfig {
	return mainnetBeaconConfig
}
