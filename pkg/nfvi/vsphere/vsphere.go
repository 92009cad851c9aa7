// Copyright © 2024 The vjailbreak authors

// Package vsphere drives ESXi hosts and their virtual machines through
// vCenter. A locked host is a host in maintenance mode.
package vsphere

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/base"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/methods"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/soap"
	"github.com/vmware/govmomi/vim25/types"
)

const BackendName = "vsphere"

type Backend struct {
	base.UnimplementedGateway
	client  *vim25.Client
	root    types.ManagedObjectReference
	timeout time.Duration
	log     *logrus.Entry
}

// Connect logs into vCenter and scopes every lookup to the configured
// datacenter, or to the default one.
func Connect(ctx context.Context, cfg config.VSphereConfig, timeout time.Duration, p loop.Poster) (*Backend, error) {
	u, err := soap.ParseURL(cfg.Host)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid vCenter address %q", cfg.Host)
	}
	u.User = url.UserPassword(cfg.Username, cfg.Password)
	c, err := govmomi.NewClient(ctx, u, cfg.Insecure)
	if err != nil {
		return nil, errors.Wrap(err, "failed to log into vCenter")
	}
	return New(ctx, c.Client, cfg.Datacenter, timeout, p)
}

func New(ctx context.Context, c *vim25.Client, datacenter string, timeout time.Duration, p loop.Poster) (*Backend, error) {
	finder := find.NewFinder(c, true)
	var (
		dc  *object.Datacenter
		err error
	)
	if datacenter == "" {
		dc, err = finder.DefaultDatacenter(ctx)
	} else {
		dc, err = finder.Datacenter(ctx, datacenter)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find datacenter")
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Backend{
		UnimplementedGateway: base.UnimplementedGateway{Poster: p},
		client:               c,
		root:                 dc.Reference(),
		timeout:              timeout,
		log:                  logrus.WithField("backend", BackendName),
	}, nil
}

func (b *Backend) WhoAmI() string {
	return BackendName
}

func (b *Backend) do(op, name string, cb nfvi.Callback, fn func(ctx context.Context) error) {
	b.doTask(op, name, cb, func(ctx context.Context) (string, error) {
		return "", fn(ctx)
	})
}

// doTask is do for calls backed by a vCenter task, whose reference becomes
// the ActionID of the response.
func (b *Backend) doTask(op, name string, cb nfvi.Callback, fn func(ctx context.Context) (string, error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		ref, err := fn(ctx)
		var resp nfvi.Response
		if err != nil {
			b.log.Warnf("%s %s: %v", op, name, err)
			resp = nfvi.Failed(fmt.Sprintf("%s %s failed: %v", op, name, err))
		} else {
			b.log.Debugf("%s %s done", op, name)
			resp = nfvi.Succeeded(nil)
		}
		resp.ActionID = ref
		b.Respond(cb, resp)
	}()
}

// lookup returns the managed object of the given kind and name below the
// datacenter.
func (b *Backend) lookup(ctx context.Context, kind, name string) (types.ManagedObjectReference, error) {
	v, err := view.NewManager(b.client).CreateContainerView(ctx, b.root, []string{kind}, true)
	if err != nil {
		return types.ManagedObjectReference{}, err
	}
	defer func() { _ = v.Destroy(ctx) }()
	refs, err := v.Find(ctx, []string{kind}, property.Match{"name": name})
	if err != nil {
		return types.ManagedObjectReference{}, err
	}
	if len(refs) == 0 {
		return types.ManagedObjectReference{}, errors.Errorf("%s %s not found", kind, name)
	}
	return refs[0], nil
}

func (b *Backend) host(ctx context.Context, name string) (*object.HostSystem, error) {
	ref, err := b.lookup(ctx, "HostSystem", name)
	if err != nil {
		return nil, err
	}
	return object.NewHostSystem(b.client, ref), nil
}

func (b *Backend) vm(ctx context.Context, name string) (*object.VirtualMachine, error) {
	ref, err := b.lookup(ctx, "VirtualMachine", name)
	if err != nil {
		return nil, err
	}
	return object.NewVirtualMachine(b.client, ref), nil
}

func (b *Backend) seconds() int32 {
	return int32(b.timeout / time.Second)
}

// LockHost puts the host into maintenance mode, which also moves its
// powered off virtual machines away.
func (b *Backend) LockHost(uuid, name string, cb nfvi.Callback) {
	b.do("lock", name, cb, func(ctx context.Context) error {
		host, err := b.host(ctx, name)
		if err != nil {
			return err
		}
		task, err := host.EnterMaintenanceMode(ctx, b.seconds(), true, nil)
		if err != nil {
			return err
		}
		return task.Wait(ctx)
	})
}

func (b *Backend) UnlockHost(uuid, name string, cb nfvi.Callback) {
	b.do("unlock", name, cb, func(ctx context.Context) error {
		host, err := b.host(ctx, name)
		if err != nil {
			return err
		}
		task, err := host.ExitMaintenanceMode(ctx, b.seconds())
		if err != nil {
			return err
		}
		return task.Wait(ctx)
	})
}

func (b *Backend) RebootHost(uuid, name string, cb nfvi.Callback) {
	b.do("reboot", name, cb, func(ctx context.Context) error {
		host, err := b.host(ctx, name)
		if err != nil {
			return err
		}
		res, err := methods.RebootHost_Task(ctx, b.client, &types.RebootHost_Task{This: host.Reference(), Force: false})
		if err != nil {
			return err
		}
		return object.NewTask(b.client, res.Returnval).Wait(ctx)
	})
}

func severity(status types.ManagedEntityStatus) objects.AlarmSeverity {
	switch status {
	case types.ManagedEntityStatusRed:
		return objects.AlarmSeverityCritical
	case types.ManagedEntityStatusYellow:
		return objects.AlarmSeverityMajor
	default:
		return objects.AlarmSeverityWarning
	}
}

// QueryAlarms reports the alarms triggered on the datacenter. Red alarms
// are management affecting.
func (b *Backend) QueryAlarms(cb nfvi.Callback) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		var dc mo.Datacenter
		err := property.DefaultCollector(b.client).RetrieveOne(ctx, b.root, []string{"triggeredAlarmState"}, &dc)
		if err != nil {
			b.Respond(cb, nfvi.Failed(fmt.Sprintf("query alarms failed: %v", err)))
			return
		}
		alarms := make([]objects.Alarm, 0, len(dc.TriggeredAlarmState))
		for _, state := range dc.TriggeredAlarmState {
			alarms = append(alarms, objects.Alarm{
				AlarmID:          state.Alarm.Value,
				EntityInstanceID: state.Entity.Type + "=" + state.Entity.Value,
				Severity:         severity(state.OverallStatus),
				ReasonText:       state.Key,
				MgmtAffecting:    state.OverallStatus == types.ManagedEntityStatusRed,
			})
		}
		b.Respond(cb, nfvi.Succeeded(alarms))
	}()
}

func (b *Backend) vmTask(op, name string, cb nfvi.Callback, fn func(ctx context.Context, vm *object.VirtualMachine) (*object.Task, error)) {
	b.doTask(op, name, cb, func(ctx context.Context) (string, error) {
		vm, err := b.vm(ctx, name)
		if err != nil {
			return "", err
		}
		task, err := fn(ctx, vm)
		if err != nil {
			return "", err
		}
		return task.Reference().Value, task.Wait(ctx)
	})
}

// LiveMigrateInstance vMotions the virtual machine, letting DRS pick the
// host when none is given.
func (b *Backend) LiveMigrateInstance(uuid, name, toHost string, cb nfvi.Callback) {
	b.vmTask("live-migrate", name, cb, func(ctx context.Context, vm *object.VirtualMachine) (*object.Task, error) {
		var host *object.HostSystem
		if toHost != "" {
			h, err := b.host(ctx, toHost)
			if err != nil {
				return nil, err
			}
			host = h
		}
		return vm.Migrate(ctx, nil, host, types.VirtualMachineMovePriorityDefaultPriority, "")
	})
}

func (b *Backend) StartInstance(uuid, name string, cb nfvi.Callback) {
	b.vmTask("start", name, cb, func(ctx context.Context, vm *object.VirtualMachine) (*object.Task, error) {
		return vm.PowerOn(ctx)
	})
}

func (b *Backend) StopInstance(uuid, name string, cb nfvi.Callback) {
	b.vmTask("stop", name, cb, func(ctx context.Context, vm *object.VirtualMachine) (*object.Task, error) {
		return vm.PowerOff(ctx)
	})
}

func (b *Backend) SuspendInstance(uuid, name string, cb nfvi.Callback) {
	b.vmTask("suspend", name, cb, func(ctx context.Context, vm *object.VirtualMachine) (*object.Task, error) {
		return vm.Suspend(ctx)
	})
}

func (b *Backend) ResumeInstance(uuid, name string, cb nfvi.Callback) {
	b.vmTask("resume", name, cb, func(ctx context.Context, vm *object.VirtualMachine) (*object.Task, error) {
		return vm.PowerOn(ctx)
	})
}

// RebootInstance resets the virtual machine on a hard reboot and asks the
// guest to restart otherwise.
func (b *Backend) RebootInstance(uuid, name string, hard bool, cb nfvi.Callback) {
	if hard {
		b.vmTask("reboot", name, cb, func(ctx context.Context, vm *object.VirtualMachine) (*object.Task, error) {
			return vm.Reset(ctx)
		})
		return
	}
	b.do("reboot", name, cb, func(ctx context.Context) error {
		vm, err := b.vm(ctx, name)
		if err != nil {
			return err
		}
		return vm.RebootGuest(ctx)
	})
}

func (b *Backend) DeleteInstance(uuid, name string, cb nfvi.Callback) {
	b.vmTask("delete", name, cb, func(ctx context.Context, vm *object.VirtualMachine) (*object.Task, error) {
		return vm.Destroy(ctx)
	})
}

var _ nfvi.Gateway = &Backend{}
