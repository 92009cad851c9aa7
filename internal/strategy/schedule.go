// Copyright © 2024 The vjailbreak authors

package strategy

import (
	"math"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
)

// maxAggregateShare caps the share of an aggregate updated in one stage.
const maxAggregateShare = 0.5

func (s *Strategy) maxWorkersPerStage() int {
	if s.WorkerApplyType == ApplyParallel {
		return s.MaxParallelWorkerHosts
	}
	return 1
}

// chunk splits hosts in batches of at most n, keeping the order.
func chunk(hosts []*objects.Host, n int) [][]*objects.Host {
	var batches [][]*objects.Host
	for len(hosts) > 0 {
		k := n
		if k > len(hosts) {
			k = len(hosts)
		}
		batches = append(batches, hosts[:k])
		hosts = hosts[k:]
	}
	return batches
}

// firstFit builds batches of at most n hosts. fits tells whether a host can
// join the batch being built; the first host of a batch always joins.
func firstFit(hosts []*objects.Host, n int, fits func(batch []*objects.Host, h *objects.Host) bool) [][]*objects.Host {
	var batches [][]*objects.Host
	remaining := hosts
	for len(remaining) > 0 {
		var batch, left []*objects.Host
		for _, h := range remaining {
			if len(batch) < n && (len(batch) == 0 || fits(batch, h)) {
				batch = append(batch, h)
				continue
			}
			left = append(left, h)
		}
		batches = append(batches, batch)
		remaining = left
	}
	return batches
}

// workerBatches returns the instance free hosts in batches of the allowed
// width, then the hosts with instances in waves where no two hosts carry
// members of the same anti-affinity group and no aggregate goes over its
// limit.
func (s *Strategy) workerBatches(workers []*objects.Host) (free, busy [][]*objects.Host) {
	inv := s.env.Inventory
	n := s.maxWorkersPerStage()
	var freeHosts, busyHosts []*objects.Host
	for _, h := range workers {
		if inv.ExistOnHost(h.Name) {
			busyHosts = append(busyHosts, h)
		} else {
			freeHosts = append(freeHosts, h)
		}
	}
	free = chunk(freeHosts, n)
	if n == 1 {
		return free, chunk(busyHosts, 1)
	}

	limits := aggregateLimits(inv, n, len(workers))
	groups := make(map[string]map[string]bool, len(busyHosts))
	for _, h := range busyHosts {
		groups[h.Name] = antiAffinityGroups(inv, h.Name)
	}
	busy = firstFit(busyHosts, n, func(batch []*objects.Host, h *objects.Host) bool {
		for _, b := range batch {
			for g := range groups[h.Name] {
				if groups[b.Name][g] {
					return false
				}
			}
		}
		for _, a := range inv.AggregatesOf(h.Name) {
			count := 0
			for _, b := range batch {
				if a.HasHost(b.Name) {
					count++
				}
			}
			if count >= limits[a.Name] {
				return false
			}
		}
		return true
	})
	return free, busy
}

// aggregateLimits returns how many members of each aggregate one stage may
// take: the aggregate's share of the stage width, at least one and never
// more than half the aggregate.
func aggregateLimits(inv *tables.Inventory, perStage, workers int) map[string]int {
	limits := make(map[string]int)
	if workers == 0 {
		return limits
	}
	share := math.Min(maxAggregateShare, float64(perStage)/float64(workers))
	for _, a := range inv.HostAggregates() {
		limit := int(float64(len(a.Hosts)) * share)
		if limit < 1 {
			limit = 1
		}
		limits[a.Name] = limit
	}
	return limits
}

func antiAffinityGroups(inv *tables.Inventory, hostName string) map[string]bool {
	groups := make(map[string]bool)
	for _, inst := range inv.InstancesOnHost(hostName) {
		for _, g := range inv.InstanceGroupsOf(inst.UUID) {
			if g.IsAntiAffinity() {
				groups[g.UUID] = true
			}
		}
	}
	return groups
}

// storageBatches never puts two hosts of one replication group in the same
// stage.
func (s *Strategy) storageBatches(storage []*objects.Host) [][]*objects.Host {
	if s.StorageApplyType != ApplyParallel {
		return chunk(storage, 1)
	}
	inv := s.env.Inventory
	return firstFit(storage, len(storage), func(batch []*objects.Host, h *objects.Host) bool {
		for _, g := range inv.HostGroupsOf(h.Name) {
			if !g.HasPolicy(objects.HostGroupStorageReplication) {
				continue
			}
			for _, b := range batch {
				for _, name := range g.Hosts {
					if name == b.Name {
						return false
					}
				}
			}
		}
		return true
	})
}
