package params

import "testing"

// SetupTestConfigCleanup preserves configurations allowing to modify them
// within tests without any worries of affecting other tests.
func SetupTestConfigCleanup(t testing.TB) {
	prevConfig := BeaconConfig().Copy()
	t.Cleanup(func() {
		OverrideBeaconConfig(prevConfig)
	})
}
