// Copyright © 2024 The vjailbreak authors

package objects

type InstanceGroupPolicy string

const (
	PolicyAffinity               InstanceGroupPolicy = "affinity"
	PolicyAntiAffinity           InstanceGroupPolicy = "anti-affinity"
	PolicyAntiAffinityBestEffort InstanceGroupPolicy = "anti-affinity-best-effort"
)

// InstanceGroup is a server group; Members holds instance uuids.
type InstanceGroup struct {
	UUID     string                `json:"uuid" yaml:"uuid"`
	Name     string                `json:"name" yaml:"name"`
	Policies []InstanceGroupPolicy `json:"policies" yaml:"policies"`
	Members  []string              `json:"members" yaml:"members"`
}

func (g *InstanceGroup) IsAntiAffinity() bool {
	for _, p := range g.Policies {
		if p == PolicyAntiAffinity || p == PolicyAntiAffinityBestEffort {
			return true
		}
	}
	return false
}

func (g *InstanceGroup) HasMember(uuid string) bool {
	for _, m := range g.Members {
		if m == uuid {
			return true
		}
	}
	return false
}

type HostGroupPolicy string

const (
	HostGroupStorageReplication HostGroupPolicy = "storage-replication"
)

// HostGroup binds storage hosts that replicate data between each other.
type HostGroup struct {
	Name     string            `json:"name" yaml:"name"`
	Policies []HostGroupPolicy `json:"policies" yaml:"policies"`
	Hosts    []string          `json:"hosts" yaml:"hosts"`
}

func (g *HostGroup) HasPolicy(policy HostGroupPolicy) bool {
	for _, p := range g.Policies {
		if p == policy {
			return true
		}
	}
	return false
}

// HostAggregate is a named set of worker hosts.
type HostAggregate struct {
	Name  string   `json:"name" yaml:"name"`
	Hosts []string `json:"hosts" yaml:"hosts"`
}

func (a *HostAggregate) HasHost(name string) bool {
	for _, h := range a.Hosts {
		if h == name {
			return true
		}
	}
	return false
}
