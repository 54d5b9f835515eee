package attestations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var blockAttestationPackingTime = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "attestation_pool_block_attestation_packing_time",
		Help: "Time taken to select and pack attestations for a block, in seconds",
	},
)
