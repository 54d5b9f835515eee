// Package cache includes all important caches for the runtime of the beacon
// node.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/suchsoon/nimbus-eth2/config/params"
	types "github.com/suchsoon/nimbus-eth2/consensus-types/primitives"
)

// maxCommitteesCacheSize defines the max number of shuffled committees on per
// randao basis can cache. Due to reorgs and long finality, it's good to keep
// the old cache around for quickly switch over.
const maxCommitteesCacheSize = 8

// ErrNotCommittee is returned when a cached object is not a committee struct.
var ErrNotCommittee = errors.New("object is not a committee struct")

// Committees defines the shuffled committees seed.
type Committees struct {
	CommitteeCount  uint64
	Seed            [32]byte
	ShuffledIndices []types.ValidatorIndex
	SortedIndices   []types.ValidatorIndex
}

// CommitteeCache is a struct with 1 LRU cache for looking up shuffled indices.
type CommitteeCache struct {
	cache *lru.Cache
	lock  sync.RWMutex
}

// NewCommitteesCache creates a new committee cache for storing/accessing
// shuffled indices of a committee.
func NewCommitteesCache() *CommitteeCache {
	cache, err := lru.New(maxCommitteesCacheSize)
	if err != nil {
		panic(err)
	}
	return &CommitteeCache{cache: cache}
}

// Committee fetches the shuffled indices by slot and committee index. Every
// list of indices of each committee has the same committee size.
func (c *CommitteeCache) Committee(slot types.Slot, seed [32]byte, index types.CommitteeIndex) ([]types.ValidatorIndex, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	obj, exists := c.cache.Get(seed)
	if !exists {
		return nil, nil
	}
	item, ok := obj.(*Committees)
	if !ok {
		return nil, ErrNotCommittee
	}

	committeeCountPerSlot := uint64(1)
	if item.CommitteeCount/uint64(params.BeaconConfig().SlotsPerEpoch) > 1 {
		committeeCountPerSlot = item.CommitteeCount / uint64(params.BeaconConfig().SlotsPerEpoch)
	}

	indexOffSet := uint64(index) + uint64(slot)%uint64(params.BeaconConfig().SlotsPerEpoch)*committeeCountPerSlot
	start, end := startEndIndices(item, indexOffSet)

	if end > uint64(len(item.ShuffledIndices)) || end < start {
		return nil, errors.New("requested index out of bound")
	}

	return item.ShuffledIndices[start:end], nil
}

// AddCommitteeShuffledList adds Committee shuffled list object to the cache.
// This method also trims the least recently list if the cache size has reached
// its limit.
func (c *CommitteeCache) AddCommitteeShuffledList(committees *Committees) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cache.Add(committees.Seed, committees)
}

// HasEntry returns true if the committee cache has a value cached for the seed.
func (c *CommitteeCache) HasEntry(seed [32]byte) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.cache.Contains(seed)
}

// Clear resets the committee cache to its initial state.
func (c *CommitteeCache) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cache.Purge()
}

func startEndIndices(c *Committees, index uint64) (uint64, uint64) {
	validatorCount := uint64(len(c.ShuffledIndices))
	start := validatorCount * index / c.CommitteeCount
	end := validatorCount * (index + 1) / c.CommitteeCount
	return start, end
}
