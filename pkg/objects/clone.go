// Copyright © 2024 The vjailbreak authors

package objects

// Clone returns a deep copy. Objects held by the inventory tables are never
// mutated in place; updates go through a clone.
func (h *Host) Clone() *Host {
	c := *h
	c.Personality = append([]Personality(nil), h.Personality...)
	if h.Services != nil {
		c.Services = make(map[HostService]HostServiceState, len(h.Services))
		for k, v := range h.Services {
			c.Services[k] = v
		}
	}
	return &c
}

func (i *Instance) Clone() *Instance {
	c := *i
	c.AvailStatus = append(AvailStatusSet(nil), i.AvailStatus...)
	if i.ActionData != nil {
		d := *i.ActionData
		c.ActionData = &d
	}
	if i.LastActionData != nil {
		d := *i.LastActionData
		c.LastActionData = &d
	}
	return &c
}

func (g *InstanceGroup) Clone() *InstanceGroup {
	c := *g
	c.Policies = append([]InstanceGroupPolicy(nil), g.Policies...)
	c.Members = append([]string(nil), g.Members...)
	return &c
}

func (g *HostGroup) Clone() *HostGroup {
	c := *g
	c.Policies = append([]HostGroupPolicy(nil), g.Policies...)
	c.Hosts = append([]string(nil), g.Hosts...)
	return &c
}

func (a *HostAggregate) Clone() *HostAggregate {
	c := *a
	c.Hosts = append([]string(nil), a.Hosts...)
	return &c
}
