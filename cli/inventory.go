// Copyright © 2024 The vjailbreak authors

package cli

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/openstack-archive/stx-nfv-sub001/internal/strategy"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/tables"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// inventoryFile is the YAML description of a system: its inventory plus
// what the backend would answer to alarm and upgrade queries.
type inventoryFile struct {
	Hosts          []*objects.Host          `yaml:"hosts"`
	Instances      []*objects.Instance      `yaml:"instances"`
	InstanceGroups []*objects.InstanceGroup `yaml:"instance_groups"`
	HostGroups     []*objects.HostGroup     `yaml:"host_groups"`
	HostAggregates []*objects.HostAggregate `yaml:"host_aggregates"`
	Alarms         []objects.Alarm          `yaml:"alarms"`
	Upgrade        *objects.Upgrade         `yaml:"upgrade"`
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	return nil
}

func readInventory(path string) (*inventoryFile, error) {
	var f inventoryFile
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func readRequest(path string) (strategy.Request, error) {
	var req strategy.Request
	if err := readYAML(path, &req); err != nil {
		return req, err
	}
	return req, nil
}

// load puts every object of the file into the tables and reports every
// object that was rejected.
func (f *inventoryFile) load(inv *tables.Inventory) error {
	var result *multierror.Error
	add := func(what, name string, err error) {
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "%s %s", what, name))
		}
	}
	for _, h := range f.Hosts {
		if h.Name == "" {
			result = multierror.Append(result, errors.New("host without a name"))
			continue
		}
		add("host", h.Name, inv.PutHost(h))
	}
	for _, i := range f.Instances {
		if i.UUID == "" {
			result = multierror.Append(result, errors.Errorf("instance %s without a uuid", i.Name))
			continue
		}
		if i.HostName != "" && inv.Host(i.HostName) == nil {
			result = multierror.Append(result, errors.Errorf("instance %s is on unknown host %s", i.Name, i.HostName))
			continue
		}
		add("instance", i.Name, inv.PutInstance(i))
	}
	for _, g := range f.InstanceGroups {
		add("instance group", g.Name, inv.PutInstanceGroup(g))
	}
	for _, g := range f.HostGroups {
		add("host group", g.Name, inv.PutHostGroup(g))
	}
	for _, a := range f.HostAggregates {
		add("host aggregate", a.Name, inv.PutHostAggregate(a))
	}
	return result.ErrorOrNil()
}
