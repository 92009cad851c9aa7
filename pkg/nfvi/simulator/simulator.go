// Copyright © 2024 The vjailbreak authors

// Package simulator is an in-process backend. It records every call and
// either completes it immediately through the loop or leaves it pending for
// the caller to complete.
package simulator

import (
	"fmt"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/base"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
)

const SimulatorName = "simulator"

type Call struct {
	ID     string
	Method string
	UUID   string
	Name   string
	Arg    string
	Done   bool
	cb     nfvi.Callback
}

func (c *Call) String() string {
	if c.Arg != "" {
		return fmt.Sprintf("%s(%s, %s)", c.Method, c.Name, c.Arg)
	}
	return fmt.Sprintf("%s(%s)", c.Method, c.Name)
}

type Simulator struct {
	base.UnimplementedGateway
	Calls        []*Call
	AutoComplete bool
	Alarms       []objects.Alarm
	Upgrade      *objects.Upgrade
	// OnSuccess runs before the callback of a successfully completed call,
	// tests use it to apply the backend side effects of a call.
	OnSuccess func(c *Call)
	failures  map[string]string
}

func New(p loop.Poster) *Simulator {
	return &Simulator{
		UnimplementedGateway: base.UnimplementedGateway{Poster: p},
		failures:             make(map[string]string),
	}
}

func (s *Simulator) WhoAmI() string {
	return SimulatorName
}

func failureKey(method, name string) string {
	return method + "/" + name
}

// FailCalls makes every later call of method on name fail with reason.
func (s *Simulator) FailCalls(method, name, reason string) {
	s.failures[failureKey(method, name)] = reason
}

func (s *Simulator) ClearFailures() {
	s.failures = make(map[string]string)
}

func (s *Simulator) record(method, uuid, name, arg string, cb nfvi.Callback) {
	c := &Call{ID: fmt.Sprintf("sim-%d", len(s.Calls)+1), Method: method, UUID: uuid, Name: name, Arg: arg, cb: cb}
	s.Calls = append(s.Calls, c)
	if s.AutoComplete {
		s.finish(c, s.defaultResponse(c))
	}
}

func (s *Simulator) defaultResponse(c *Call) nfvi.Response {
	if reason, ok := s.failures[failureKey(c.Method, c.Name)]; ok {
		return nfvi.Failed(reason)
	}
	switch c.Method {
	case "QueryAlarms":
		return nfvi.Succeeded(append([]objects.Alarm(nil), s.Alarms...))
	case "QueryUpgrade":
		if s.Upgrade == nil {
			return nfvi.Succeeded((*objects.Upgrade)(nil))
		}
		u := *s.Upgrade
		return nfvi.Succeeded(&u)
	}
	return nfvi.Succeeded(nil)
}

func (s *Simulator) finish(c *Call, resp nfvi.Response) {
	c.Done = true
	if resp.ActionID == "" {
		resp.ActionID = c.ID
	}
	s.Poster.Post(func() {
		if resp.Completed && s.OnSuccess != nil {
			s.OnSuccess(c)
		}
		if c.cb != nil {
			c.cb(resp)
		}
	})
}

// Pending returns the first unanswered call of method on name.
func (s *Simulator) Pending(method, name string) *Call {
	for _, c := range s.Calls {
		if !c.Done && c.Method == method && c.Name == name {
			return c
		}
	}
	return nil
}

// Complete answers the first pending call of method on name.
func (s *Simulator) Complete(method, name string, resp nfvi.Response) bool {
	c := s.Pending(method, name)
	if c == nil {
		return false
	}
	s.finish(c, resp)
	return true
}

// CompleteAll answers every pending call with the default response.
func (s *Simulator) CompleteAll() int {
	n := 0
	for _, c := range s.Calls {
		if !c.Done {
			s.finish(c, s.defaultResponse(c))
			n++
		}
	}
	return n
}

// CallsTo returns the target names of every call of method, in call order.
func (s *Simulator) CallsTo(method string) []string {
	var names []string
	for _, c := range s.Calls {
		if c.Method == method {
			names = append(names, c.Name)
		}
	}
	return names
}

func (s *Simulator) LockHost(uuid, name string, cb nfvi.Callback) {
	s.record("LockHost", uuid, name, "", cb)
}

func (s *Simulator) UnlockHost(uuid, name string, cb nfvi.Callback) {
	s.record("UnlockHost", uuid, name, "", cb)
}

func (s *Simulator) RebootHost(uuid, name string, cb nfvi.Callback) {
	s.record("RebootHost", uuid, name, "", cb)
}

func (s *Simulator) UpgradeHost(uuid, name, release string, cb nfvi.Callback) {
	s.record("UpgradeHost", uuid, name, release, cb)
}

func (s *Simulator) SwactFromHost(uuid, name string, cb nfvi.Callback) {
	s.record("SwactFromHost", uuid, name, "", cb)
}

func (s *Simulator) DisableHostServices(uuid, name string, service objects.HostService, cb nfvi.Callback) {
	s.record("DisableHostServices", uuid, name, string(service), cb)
}

func (s *Simulator) EnableHostServices(uuid, name string, service objects.HostService, cb nfvi.Callback) {
	s.record("EnableHostServices", uuid, name, string(service), cb)
}

func (s *Simulator) NotifyHostServicesDisabled(uuid, name string, cb nfvi.Callback) {
	s.record("NotifyHostServicesDisabled", uuid, name, "", cb)
}

func (s *Simulator) NotifyHostServicesEnabled(uuid, name string, cb nfvi.Callback) {
	s.record("NotifyHostServicesEnabled", uuid, name, "", cb)
}

func (s *Simulator) QueryAlarms(cb nfvi.Callback) {
	s.record("QueryAlarms", "", "", "", cb)
}

func (s *Simulator) QueryUpgrade(cb nfvi.Callback) {
	s.record("QueryUpgrade", "", "", "", cb)
}

func (s *Simulator) UpgradeStart(cb nfvi.Callback) {
	s.record("UpgradeStart", "", "", "", cb)
}

func (s *Simulator) UpgradeActivate(cb nfvi.Callback) {
	s.record("UpgradeActivate", "", "", "", cb)
}

func (s *Simulator) UpgradeComplete(cb nfvi.Callback) {
	s.record("UpgradeComplete", "", "", "", cb)
}

func (s *Simulator) LiveMigrateInstance(uuid, name, toHost string, cb nfvi.Callback) {
	s.record("LiveMigrateInstance", uuid, name, toHost, cb)
}

func (s *Simulator) ColdMigrateInstance(uuid, name string, cb nfvi.Callback) {
	s.record("ColdMigrateInstance", uuid, name, "", cb)
}

func (s *Simulator) ColdMigrateConfirmInstance(uuid, name string, cb nfvi.Callback) {
	s.record("ColdMigrateConfirmInstance", uuid, name, "", cb)
}

func (s *Simulator) EvacuateInstance(uuid, name string, cb nfvi.Callback) {
	s.record("EvacuateInstance", uuid, name, "", cb)
}

func (s *Simulator) StartInstance(uuid, name string, cb nfvi.Callback) {
	s.record("StartInstance", uuid, name, "", cb)
}

func (s *Simulator) StopInstance(uuid, name string, cb nfvi.Callback) {
	s.record("StopInstance", uuid, name, "", cb)
}

func (s *Simulator) PauseInstance(uuid, name string, cb nfvi.Callback) {
	s.record("PauseInstance", uuid, name, "", cb)
}

func (s *Simulator) UnpauseInstance(uuid, name string, cb nfvi.Callback) {
	s.record("UnpauseInstance", uuid, name, "", cb)
}

func (s *Simulator) SuspendInstance(uuid, name string, cb nfvi.Callback) {
	s.record("SuspendInstance", uuid, name, "", cb)
}

func (s *Simulator) ResumeInstance(uuid, name string, cb nfvi.Callback) {
	s.record("ResumeInstance", uuid, name, "", cb)
}

func (s *Simulator) RebootInstance(uuid, name string, hard bool, cb nfvi.Callback) {
	arg := "soft"
	if hard {
		arg = "hard"
	}
	s.record("RebootInstance", uuid, name, arg, cb)
}

func (s *Simulator) RebuildInstance(uuid, name string, cb nfvi.Callback) {
	s.record("RebuildInstance", uuid, name, "", cb)
}

func (s *Simulator) DeleteInstance(uuid, name string, cb nfvi.Callback) {
	s.record("DeleteInstance", uuid, name, "", cb)
}

var _ nfvi.Gateway = &Simulator{}
