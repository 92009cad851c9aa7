// Copyright © 2024 The vjailbreak authors

// Package tables holds the in-memory inventory of hosts, instances and their
// groupings. Stored objects are read-only; changes go through Update, which
// swaps in a modified clone and persists it.
package tables

import (
	"encoding/json"
	"sort"

	memdb "github.com/hashicorp/go-memdb"
	"github.com/hashicorp/go-multierror"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/store"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("object not found")

type Inventory struct {
	db    *memdb.MemDB
	store store.Store
	log   *logrus.Entry
}

func New(s store.Store) (*Inventory, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create inventory tables")
	}
	return &Inventory{
		db:    db,
		store: s,
		log:   logrus.WithField("component", "inventory"),
	}, nil
}

func (inv *Inventory) insert(table string, obj interface{}) error {
	txn := inv.db.Txn(true)
	if err := txn.Insert(table, obj); err != nil {
		txn.Abort()
		return errors.Wrapf(err, "failed to insert into %s", table)
	}
	txn.Commit()
	return nil
}

func (inv *Inventory) first(table, index string, args ...interface{}) interface{} {
	txn := inv.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(table, index, args...)
	if err != nil {
		inv.log.Errorf("lookup %s.%s failed: %v", table, index, err)
		return nil
	}
	return raw
}

func (inv *Inventory) list(table, index string, args ...interface{}) []interface{} {
	txn := inv.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(table, index, args...)
	if err != nil {
		inv.log.Errorf("lookup %s.%s failed: %v", table, index, err)
		return nil
	}
	var out []interface{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj)
	}
	return out
}

func (inv *Inventory) persist(kind, key string, obj interface{}) error {
	if inv.store == nil {
		return nil
	}
	return inv.store.Save(kind, key, obj)
}

// Hosts

func (inv *Inventory) PutHost(h *objects.Host) error {
	c := h.Clone()
	if err := inv.insert(tableHosts, c); err != nil {
		return err
	}
	return inv.persist(store.KindHosts, c.Name, c)
}

// UpdateHost applies fn to a clone of the host and stores the result.
func (inv *Inventory) UpdateHost(name string, fn func(h *objects.Host)) (*objects.Host, error) {
	h := inv.Host(name)
	if h == nil {
		return nil, errors.Wrapf(ErrNotFound, "host %s", name)
	}
	c := h.Clone()
	fn(c)
	if err := inv.insert(tableHosts, c); err != nil {
		return nil, err
	}
	return c, inv.persist(store.KindHosts, c.Name, c)
}

func (inv *Inventory) Host(name string) *objects.Host {
	if raw := inv.first(tableHosts, "id", name); raw != nil {
		return raw.(*objects.Host)
	}
	return nil
}

func (inv *Inventory) HostByUUID(uuid string) *objects.Host {
	if raw := inv.first(tableHosts, "uuid", uuid); raw != nil {
		return raw.(*objects.Host)
	}
	return nil
}

// Hosts returns every host in natural name order.
func (inv *Inventory) Hosts() []*objects.Host {
	var hosts []*objects.Host
	for _, raw := range inv.list(tableHosts, "id") {
		hosts = append(hosts, raw.(*objects.Host))
	}
	sort.SliceStable(hosts, func(i, j int) bool { return utils.NaturalLess(hosts[i].Name, hosts[j].Name) })
	return hosts
}

func (inv *Inventory) HostsWithPersonality(p objects.Personality) []*objects.Host {
	var hosts []*objects.Host
	for _, h := range inv.Hosts() {
		if h.HasPersonality(p) && !h.Deleted {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// Instances

func (inv *Inventory) PutInstance(i *objects.Instance) error {
	c := i.Clone()
	if err := inv.insert(tableInstances, c); err != nil {
		return err
	}
	return inv.persist(store.KindInstances, c.UUID, c)
}

func (inv *Inventory) UpdateInstance(uuid string, fn func(i *objects.Instance)) (*objects.Instance, error) {
	i := inv.Instance(uuid)
	if i == nil {
		return nil, errors.Wrapf(ErrNotFound, "instance %s", uuid)
	}
	c := i.Clone()
	fn(c)
	if err := inv.insert(tableInstances, c); err != nil {
		return nil, err
	}
	return c, inv.persist(store.KindInstances, c.UUID, c)
}

func (inv *Inventory) Instance(uuid string) *objects.Instance {
	if raw := inv.first(tableInstances, "id", uuid); raw != nil {
		return raw.(*objects.Instance)
	}
	return nil
}

func sortInstances(instances []*objects.Instance) {
	sort.SliceStable(instances, func(i, j int) bool {
		return utils.NaturalLess(instances[i].Name, instances[j].Name)
	})
}

func (inv *Inventory) Instances() []*objects.Instance {
	var instances []*objects.Instance
	for _, raw := range inv.list(tableInstances, "id") {
		instances = append(instances, raw.(*objects.Instance))
	}
	sortInstances(instances)
	return instances
}

// InstancesOnHost returns the non-deleted instances placed on the host.
func (inv *Inventory) InstancesOnHost(hostName string) []*objects.Instance {
	var instances []*objects.Instance
	for _, raw := range inv.list(tableInstances, "host", hostName) {
		i := raw.(*objects.Instance)
		if !i.IsDeleted() {
			instances = append(instances, i)
		}
	}
	sortInstances(instances)
	return instances
}

func (inv *Inventory) ExistOnHost(hostName string) bool {
	return len(inv.InstancesOnHost(hostName)) > 0
}

// Groups and aggregates

func (inv *Inventory) PutInstanceGroup(g *objects.InstanceGroup) error {
	c := g.Clone()
	if err := inv.insert(tableInstanceGroups, c); err != nil {
		return err
	}
	return inv.persist(store.KindInstanceGroups, c.UUID, c)
}

func (inv *Inventory) InstanceGroups() []*objects.InstanceGroup {
	var groups []*objects.InstanceGroup
	for _, raw := range inv.list(tableInstanceGroups, "id") {
		groups = append(groups, raw.(*objects.InstanceGroup))
	}
	return groups
}

// InstanceGroupsOf returns the groups the instance is a member of.
func (inv *Inventory) InstanceGroupsOf(instanceUUID string) []*objects.InstanceGroup {
	var groups []*objects.InstanceGroup
	for _, raw := range inv.list(tableInstanceGroups, "members", instanceUUID) {
		groups = append(groups, raw.(*objects.InstanceGroup))
	}
	return groups
}

func (inv *Inventory) PutHostGroup(g *objects.HostGroup) error {
	c := g.Clone()
	if err := inv.insert(tableHostGroups, c); err != nil {
		return err
	}
	return inv.persist(store.KindHostGroups, c.Name, c)
}

func (inv *Inventory) HostGroupsOf(hostName string) []*objects.HostGroup {
	var groups []*objects.HostGroup
	for _, raw := range inv.list(tableHostGroups, "hosts", hostName) {
		groups = append(groups, raw.(*objects.HostGroup))
	}
	return groups
}

func (inv *Inventory) PutHostAggregate(a *objects.HostAggregate) error {
	c := a.Clone()
	if err := inv.insert(tableHostAggregates, c); err != nil {
		return err
	}
	return inv.persist(store.KindHostAggregates, c.Name, c)
}

func (inv *Inventory) HostAggregates() []*objects.HostAggregate {
	var aggregates []*objects.HostAggregate
	for _, raw := range inv.list(tableHostAggregates, "id") {
		aggregates = append(aggregates, raw.(*objects.HostAggregate))
	}
	return aggregates
}

func (inv *Inventory) AggregatesOf(hostName string) []*objects.HostAggregate {
	var aggregates []*objects.HostAggregate
	for _, raw := range inv.list(tableHostAggregates, "hosts", hostName) {
		aggregates = append(aggregates, raw.(*objects.HostAggregate))
	}
	return aggregates
}

// Load fills the tables from the store. Records that fail to decode are
// skipped and reported together.
func (inv *Inventory) Load() error {
	if inv.store == nil {
		return nil
	}
	var result *multierror.Error
	load := func(kind, table string, newObj func() interface{}) {
		err := inv.store.LoadAll(kind, func(key string, data []byte) error {
			if store.IsEmpty(data) {
				return nil
			}
			obj := newObj()
			if err := json.Unmarshal(data, obj); err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "failed to decode %s/%s", kind, key))
				return nil
			}
			if err := inv.insert(table, obj); err != nil {
				result = multierror.Append(result, err)
			}
			return nil
		})
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	load(store.KindHosts, tableHosts, func() interface{} { return &objects.Host{} })
	load(store.KindInstances, tableInstances, func() interface{} { return &objects.Instance{} })
	load(store.KindInstanceGroups, tableInstanceGroups, func() interface{} { return &objects.InstanceGroup{} })
	load(store.KindHostGroups, tableHostGroups, func() interface{} { return &objects.HostGroup{} })
	load(store.KindHostAggregates, tableHostAggregates, func() interface{} { return &objects.HostAggregate{} })
	inv.log.Infof("inventory loaded: %d hosts, %d instances", len(inv.Hosts()), len(inv.Instances()))
	return result.ErrorOrNil()
}
