// Copyright © 2024 The vjailbreak authors

package instancefsm

import (
	"fmt"
	"time"

	"github.com/openstack-archive/stx-nfv-sub001/pkg/constants"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/task"
)

type callFunc func(gw nfvi.ComputeAPI, inst *objects.Instance, params objects.ActionParameters, cb nfvi.Callback)

// effectFunc applies the outcome of a successful call to the instance record.
type effectFunc func(rec *objects.Instance, data *objects.InstanceActionData, resp nfvi.Response)

// callWork issues one compute call for the instance and applies its effect.
type callWork struct {
	task.WorkBase
	am        *actionMachine
	taskState objects.InstanceTaskState
	call      callFunc
	effect    effectFunc
}

func newCallWork(am *actionMachine, name string, timeout time.Duration, forcePass bool,
	taskState objects.InstanceTaskState, call callFunc, effect effectFunc) *callWork {
	return &callWork{
		WorkBase:  task.NewWorkBase(name, timeout, forcePass),
		am:        am,
		taskState: taskState,
		call:      call,
		effect:    effect,
	}
}

func (w *callWork) Run() (task.Result, string) {
	inst := w.am.instance()
	if inst == nil {
		return task.Failed, "instance no longer exists"
	}
	if w.taskState != objects.InstanceTaskNone {
		w.am.owner.persist(func(rec *objects.Instance) { rec.TaskState = w.taskState })
	}
	w.call(w.am.owner.mgr.env.Gateway, inst, w.am.data.Parameters, func(resp nfvi.Response) {
		if !w.Waiting() {
			return
		}
		if resp.ActionID != "" {
			w.am.data.NfviActionID = resp.ActionID
		}
		now := w.am.owner.mgr.env.Timers.Now()
		w.am.owner.persist(func(rec *objects.Instance) {
			rec.TaskState = objects.InstanceTaskNone
			if resp.Completed && w.effect != nil {
				oper := rec.OperState
				w.effect(rec, w.am.data, resp)
				if rec.OperState != oper {
					rec.StateEnteredAt = now
				}
			}
		})
		if !resp.Completed {
			w.Complete(task.Failed, resp.Reason)
			return
		}
		w.Complete(task.Success, "")
	})
	return task.Wait, ""
}

func (w *callWork) TimedOut() (task.Result, string) {
	return task.TimedOut, fmt.Sprintf("%s of instance %s timed out", w.am.data.Action, w.am.owner.uuid)
}

func (w *callWork) Abort() {
	if w.taskState != objects.InstanceTaskNone {
		w.am.owner.persist(func(rec *objects.Instance) { rec.TaskState = objects.InstanceTaskNone })
	}
}

// destination is the host reported by the backend, or the requested one.
func destination(data *objects.InstanceActionData, resp nfvi.Response) string {
	if host, ok := resp.Result.(string); ok && host != "" {
		return host
	}
	return data.Parameters.TargetHost
}

func moveTo(rec *objects.Instance, data *objects.InstanceActionData, resp nfvi.Response) {
	if host := destination(data, resp); host != "" {
		rec.HostName = host
	}
}

func running(rec *objects.Instance) {
	rec.OperState = objects.InstanceOperEnabled
	rec.AvailStatus.Remove(objects.InstanceAvailFailed)
	rec.AvailStatus.Remove(objects.InstanceAvailCrashed)
	rec.AvailStatus.Remove(objects.InstanceAvailPowerOff)
}

func single(call callFunc, name string, timeout time.Duration, taskState objects.InstanceTaskState, effect effectFunc) func(am *actionMachine) []task.Work {
	return func(am *actionMachine) []task.Work {
		return []task.Work{newCallWork(am, name, timeout, false, taskState, call, effect)}
	}
}

func liveMigrate(gw nfvi.ComputeAPI, inst *objects.Instance, p objects.ActionParameters, cb nfvi.Callback) {
	gw.LiveMigrateInstance(inst.UUID, inst.Name, p.TargetHost, cb)
}

func coldMigrate(gw nfvi.ComputeAPI, inst *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
	gw.ColdMigrateInstance(inst.UUID, inst.Name, cb)
}

func coldMigrateConfirm(gw nfvi.ComputeAPI, inst *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
	gw.ColdMigrateConfirmInstance(inst.UUID, inst.Name, cb)
}

func confirmed(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
	rec.AvailStatus.Remove(objects.InstanceAvailResized)
}

// actionSpecs holds the sub-state-machine definition of every action kind.
var actionSpecs = map[objects.ActionType]actionSpec{
	objects.ActionPause: {
		cancellable: true,
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
			gw.PauseInstance(i.UUID, i.Name, cb)
		}, "pause-instance", constants.InstanceDefaultTimeout, objects.InstanceTaskNone,
			func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
				rec.AvailStatus.Add(objects.InstanceAvailPaused)
			}),
	},
	objects.ActionUnpause: {
		cancellable: true,
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
			gw.UnpauseInstance(i.UUID, i.Name, cb)
		}, "unpause-instance", constants.InstanceDefaultTimeout, objects.InstanceTaskNone,
			func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
				rec.AvailStatus.Remove(objects.InstanceAvailPaused)
			}),
	},
	objects.ActionSuspend: {
		cancellable: true,
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
			gw.SuspendInstance(i.UUID, i.Name, cb)
		}, "suspend-instance", constants.InstanceDefaultTimeout, objects.InstanceTaskNone,
			func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
				rec.AvailStatus.Add(objects.InstanceAvailSuspended)
			}),
	},
	objects.ActionResume: {
		cancellable: true,
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
			gw.ResumeInstance(i.UUID, i.Name, cb)
		}, "resume-instance", constants.InstanceDefaultTimeout, objects.InstanceTaskNone,
			func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
				rec.AvailStatus.Remove(objects.InstanceAvailSuspended)
			}),
	},
	objects.ActionStart: {
		cancellable: true,
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
			gw.StartInstance(i.UUID, i.Name, cb)
		}, "start-instance", constants.InstanceStartStopTimeout, objects.InstanceTaskNone,
			func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
				rec.OperState = objects.InstanceOperEnabled
				rec.AvailStatus.Remove(objects.InstanceAvailPowerOff)
			}),
	},
	objects.ActionStop: {
		cancellable: true,
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
			gw.StopInstance(i.UUID, i.Name, cb)
		}, "stop-instance", constants.InstanceStartStopTimeout, objects.InstanceTaskNone,
			func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
				rec.OperState = objects.InstanceOperDisabled
				rec.AvailStatus.Add(objects.InstanceAvailPowerOff)
			}),
	},
	objects.ActionReboot: {
		cancellable: true,
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, p objects.ActionParameters, cb nfvi.Callback) {
			gw.RebootInstance(i.UUID, i.Name, p.HardReboot, cb)
		}, "reboot-instance", constants.InstanceRebootTimeout, objects.InstanceTaskRebooting,
			func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
				running(rec)
			}),
	},
	objects.ActionRebuild: {
		cancellable: true,
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
			gw.RebuildInstance(i.UUID, i.Name, cb)
		}, "rebuild-instance", constants.InstanceRebuildTimeout, objects.InstanceTaskRebuilding,
			func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
				running(rec)
			}),
	},
	objects.ActionLiveMigrate: {
		cancellable: true,
		works: single(liveMigrate, "live-migrate-instance", constants.InstanceLiveMigrateTimeout,
			objects.InstanceTaskMigrating, moveTo),
	},
	objects.ActionColdMigrate: {
		cancellable: true,
		works: func(am *actionMachine) []task.Work {
			return []task.Work{
				newCallWork(am, "cold-migrate-instance", constants.InstanceColdMigrateTimeout, false,
					objects.InstanceTaskMigrating, coldMigrate,
					func(rec *objects.Instance, data *objects.InstanceActionData, resp nfvi.Response) {
						moveTo(rec, data, resp)
						rec.AvailStatus.Add(objects.InstanceAvailResized)
					}),
				newCallWork(am, "cold-migrate-confirm-instance", constants.InstanceDefaultTimeout, false,
					objects.InstanceTaskNone, coldMigrateConfirm, confirmed),
			}
		},
	},
	objects.ActionColdMigrateConfirm: {
		cancellable: true,
		works: single(coldMigrateConfirm, "cold-migrate-confirm-instance", constants.InstanceDefaultTimeout,
			objects.InstanceTaskNone, confirmed),
	},
	objects.ActionEvacuate: {
		cancellable: true,
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
			gw.EvacuateInstance(i.UUID, i.Name, cb)
		}, "evacuate-instance", constants.InstanceEvacuateTimeout, objects.InstanceTaskEvacuating,
			func(rec *objects.Instance, data *objects.InstanceActionData, resp nfvi.Response) {
				moveTo(rec, data, resp)
				running(rec)
			}),
	},
	objects.ActionDelete: {
		works: single(func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
			gw.DeleteInstance(i.UUID, i.Name, cb)
		}, "delete-instance", constants.InstanceDefaultTimeout, objects.InstanceTaskDeleting,
			func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
				rec.OperState = objects.InstanceOperDisabled
				rec.AvailStatus.Add(objects.InstanceAvailDeleted)
			}),
	},
	// fail powers the guest off and flags it failed even when the backend
	// refuses the stop.
	objects.ActionFail: {
		works: func(am *actionMachine) []task.Work {
			return []task.Work{
				&failWork{WorkBase: task.NewWorkBase("fail-instance", 0, false), am: am},
				newCallWork(am, "stop-failed-instance", constants.InstanceStartStopTimeout, true,
					objects.InstanceTaskNone,
					func(gw nfvi.ComputeAPI, i *objects.Instance, _ objects.ActionParameters, cb nfvi.Callback) {
						gw.StopInstance(i.UUID, i.Name, cb)
					},
					func(rec *objects.Instance, _ *objects.InstanceActionData, _ nfvi.Response) {
						rec.AvailStatus.Add(objects.InstanceAvailPowerOff)
					}),
			}
		},
	},
}

func init() {
	for _, a := range objects.ActionTypes {
		if _, ok := actionSpecs[a]; !ok {
			panic(fmt.Sprintf("instancefsm: no definition for action %s", a))
		}
	}
}

type failWork struct {
	task.WorkBase
	am *actionMachine
}

func (w *failWork) Run() (task.Result, string) {
	now := w.am.owner.mgr.env.Timers.Now()
	w.am.owner.persist(func(rec *objects.Instance) {
		rec.OperState = objects.InstanceOperDisabled
		rec.AvailStatus.Add(objects.InstanceAvailFailed)
		rec.StateEnteredAt = now
	})
	return task.Success, ""
}
