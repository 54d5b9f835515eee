package params

// MinimalSpecConfig retrieves the minimal config used in spec tests.
func MinimalSpecConfig() *BeaconChainConfig {
	minimalConfig := mainnetBeaconConfig.Copy()

	// Misc
	minimalConfig.TargetCommitteeSize = 4
	minimalConfig.MaxValidatorsPerCommittee = 2048
	minimalConfig.MaxCommitteesPerSlot = 4
	minimalConfig.MinGenesisActiveValidatorCount = 64
	minimalConfig.TargetAggregatorsPerCommittee = 16

	// Time parameters
	minimalConfig.MinAttestationInclusionDelay = 1
	minimalConfig.SecondsPerSlot = 6
	minimalConfig.SlotsPerEpoch = 8

	// Max operations
	minimalConfig.MaxAttestations = 128
	minimalConfig.MaxAttestationsElectra = 8

	// Forks always active in the minimal preset.
	minimalConfig.AltairForkEpoch = 0
	minimalConfig.BellatrixForkEpoch = 0
	minimalConfig.CapellaForkEpoch = 0
	minimalConfig.DenebForkEpoch = 0
	minimalConfig.ElectraForkEpoch = 0

	return minimalConfig
}
