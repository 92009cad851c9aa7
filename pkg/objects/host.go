// Copyright © 2024 The vjailbreak authors

package objects

type Personality string

const (
	PersonalityController Personality = "controller"
	PersonalityWorker     Personality = "worker"
	PersonalityStorage    Personality = "storage"
)

type HostAdminState string

const (
	HostAdminLocked   HostAdminState = "locked"
	HostAdminUnlocked HostAdminState = "unlocked"
)

type HostOperState string

const (
	HostOperEnabled  HostOperState = "enabled"
	HostOperDisabled HostOperState = "disabled"
)

type HostAvailStatus string

const (
	HostAvailAvailable HostAvailStatus = "available"
	HostAvailDegraded  HostAvailStatus = "degraded"
	HostAvailFailed    HostAvailStatus = "failed"
	HostAvailOffline   HostAvailStatus = "offline"
	HostAvailOnline    HostAvailStatus = "online"
	HostAvailIntest    HostAvailStatus = "intest"
	HostAvailPowerOff  HostAvailStatus = "power-off"
)

type HostService string

const (
	HostServiceCompute HostService = "compute"
	HostServiceNetwork HostService = "network"
)

type HostServiceState string

const (
	HostServiceEnabled  HostServiceState = "enabled"
	HostServiceDisabled HostServiceState = "disabled"
	HostServiceFailed   HostServiceState = "failed"
)

// Host is the inventory record of a physical node. Hosts are never removed
// while provisioned; a deprovisioned host is flagged Deleted.
type Host struct {
	UUID             string                           `json:"uuid" yaml:"uuid"`
	Name             string                           `json:"name" yaml:"name"`
	Personality      []Personality                    `json:"personality" yaml:"personality"`
	AdminState       HostAdminState                   `json:"admin_state" yaml:"admin_state"`
	OperState        HostOperState                    `json:"oper_state" yaml:"oper_state"`
	AvailStatus      HostAvailStatus                  `json:"avail_status" yaml:"avail_status"`
	Services         map[HostService]HostServiceState `json:"services,omitempty" yaml:"services,omitempty"`
	ActiveController bool                             `json:"active_controller,omitempty" yaml:"active_controller,omitempty"`
	SoftwareRelease  string                           `json:"software_release,omitempty" yaml:"software_release,omitempty"`
	FsmState         string                           `json:"fsm_state,omitempty" yaml:"-"`
	FailureReason    string                           `json:"failure_reason,omitempty" yaml:"-"`
	Deleted          bool                             `json:"deleted,omitempty" yaml:"-"`
}

func (h *Host) HasPersonality(p Personality) bool {
	for _, hp := range h.Personality {
		if hp == p {
			return true
		}
	}
	return false
}

func (h *Host) IsLocked() bool {
	return h.AdminState == HostAdminLocked
}

func (h *Host) IsUnlocked() bool {
	return h.AdminState == HostAdminUnlocked
}

func (h *Host) IsEnabled() bool {
	return h.OperState == HostOperEnabled
}

func (h *Host) IsDisabled() bool {
	return h.OperState == HostOperDisabled
}

func (h *Host) IsAvailable() bool {
	return h.AvailStatus == HostAvailAvailable || h.AvailStatus == HostAvailDegraded
}

func (h *Host) IsOffline() bool {
	return h.AvailStatus == HostAvailOffline || h.AvailStatus == HostAvailPowerOff
}

// IsUnlockedEnabledAvailable reports whether the host is fully in service.
func (h *Host) IsUnlockedEnabledAvailable() bool {
	return h.IsUnlocked() && h.IsEnabled() && h.IsAvailable()
}

// ServiceState returns the state of the given host service, services that
// were never reported are considered enabled on an enabled host.
func (h *Host) ServiceState(service HostService) HostServiceState {
	if state, ok := h.Services[service]; ok {
		return state
	}
	if h.IsEnabled() {
		return HostServiceEnabled
	}
	return HostServiceDisabled
}

func (h *Host) SetServiceState(service HostService, state HostServiceState) {
	if h.Services == nil {
		h.Services = make(map[HostService]HostServiceState)
	}
	h.Services[service] = state
}
