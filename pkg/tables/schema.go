// Copyright © 2024 The vjailbreak authors

package tables

import (
	memdb "github.com/hashicorp/go-memdb"
)

const (
	tableHosts          = "hosts"
	tableInstances      = "instances"
	tableInstanceGroups = "instance_groups"
	tableHostGroups     = "host_groups"
	tableHostAggregates = "host_aggregates"
)

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableHosts: {
				Name: tableHosts,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
					"uuid": {
						Name:         "uuid",
						Unique:       true,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "UUID"},
					},
				},
			},
			tableInstances: {
				Name: tableInstances,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "UUID"},
					},
					"host": {
						Name:         "host",
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "HostName"},
					},
				},
			},
			tableInstanceGroups: {
				Name: tableInstanceGroups,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "UUID"},
					},
					"members": {
						Name:         "members",
						AllowMissing: true,
						Indexer:      &memdb.StringSliceFieldIndex{Field: "Members"},
					},
				},
			},
			tableHostGroups: {
				Name: tableHostGroups,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
					"hosts": {
						Name:         "hosts",
						AllowMissing: true,
						Indexer:      &memdb.StringSliceFieldIndex{Field: "Hosts"},
					},
				},
			},
			tableHostAggregates: {
				Name: tableHostAggregates,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
					"hosts": {
						Name:         "hosts",
						AllowMissing: true,
						Indexer:      &memdb.StringSliceFieldIndex{Field: "Hosts"},
					},
				},
			},
		},
	}
}
