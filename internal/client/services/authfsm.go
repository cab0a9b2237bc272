package services

import "github.com/dmitrijs2005/nfcgate-console/internal/client/models"

// Event is an input to the authentication state machine.
type Event interface {
	event()
}

// EventStarted is raised once when the console starts.
type EventStarted struct {
	HasCredential bool
}

// EventProbeResolved carries the answer of the admin-existence probe.
type EventProbeResolved struct {
	HasAdmins     bool
	HasCredential bool
}

// EventProbeFailed means the probe got no usable answer.
type EventProbeFailed struct {
	HasCredential bool
}

// EventLoginSucceeded follows a successful login or bootstrap.
type EventLoginSucceeded struct{}

// EventNoAdmins follows a submission rejected with no_admins.
type EventNoAdmins struct{}

// EventLogout is an explicit, local logout.
type EventLogout struct{}

// EventSessionRejected is a 401 seen by any backend call.
type EventSessionRejected struct{}

func (EventStarted) event()         {}
func (EventProbeResolved) event()   {}
func (EventProbeFailed) event()     {}
func (EventLoginSucceeded) event()  {}
func (EventNoAdmins) event()        {}
func (EventLogout) event()          {}
func (EventSessionRejected) event() {}

// Effect is a side effect the controller performs after a transition.
type Effect int

const (
	EffectRunProbe Effect = iota + 1
	EffectSaveCredential
	EffectClearCredential
	EffectResetForm
)

func (e Effect) String() string {
	switch e {
	case EffectRunProbe:
		return "run_probe"
	case EffectSaveCredential:
		return "save_credential"
	case EffectClearCredential:
		return "clear_credential"
	case EffectResetForm:
		return "reset_form"
	default:
		return "unknown"
	}
}

// Transition computes the next phase and the effects to run for ev. It has
// no side effects of its own.
//
// Probe answers only move the console out of Checking; with a stored
// credential the optimistic Authenticated phase stands. A failed probe
// without a credential falls back to Login, never to Authenticated.
func Transition(phase models.AuthPhase, ev Event) (models.AuthPhase, []Effect) {
	switch e := ev.(type) {
	case EventStarted:
		if e.HasCredential {
			return models.PhaseAuthenticated, []Effect{EffectRunProbe}
		}
		return models.PhaseChecking, []Effect{EffectRunProbe}

	case EventProbeResolved:
		if phase != models.PhaseChecking || e.HasCredential {
			return phase, nil
		}
		if e.HasAdmins {
			return models.PhaseLogin, nil
		}
		return models.PhaseBootstrap, nil

	case EventProbeFailed:
		if phase != models.PhaseChecking || e.HasCredential {
			return phase, nil
		}
		return models.PhaseLogin, nil

	case EventLoginSucceeded:
		return models.PhaseAuthenticated, []Effect{EffectSaveCredential, EffectResetForm}

	case EventNoAdmins:
		if phase == models.PhaseAuthenticated {
			return models.PhaseBootstrap, []Effect{EffectClearCredential}
		}
		return models.PhaseBootstrap, nil

	case EventLogout:
		return models.PhaseLogin, []Effect{EffectClearCredential, EffectResetForm}

	case EventSessionRejected:
		if phase == models.PhaseAuthenticated {
			return models.PhaseLogin, []Effect{EffectClearCredential, EffectResetForm}
		}
		return models.PhaseLogin, []Effect{EffectClearCredential}
	}
	return phase, nil
}
