package domain

import "time"

// Outcome is the result kind of an eligibility decision.
type Outcome string

const (
	// OutcomeAllowNew permits creating a new registration row.
	OutcomeAllowNew Outcome = "ALLOW_NEW"
	// OutcomeAllowReactivate permits flipping an existing cancelled row back
	// to active.
	OutcomeAllowReactivate Outcome = "ALLOW_REACTIVATE"
	// OutcomeAllow permits a cancellation or attendance mark.
	OutcomeAllow Outcome = "ALLOW"
	// OutcomeDeny rejects the attempt; the Decision carries the reason.
	OutcomeDeny Outcome = "DENY"
)

// Stable denial reasons. These are surfaced verbatim to callers.
const (
	ReasonEventPassed           = "event has passed"
	ReasonAlreadyRegistered     = "already registered"
	ReasonAtCapacity            = "at capacity"
	ReasonNotRegistered         = "not registered"
	ReasonRegistrationCancelled = "registration cancelled"
)

// Decision is the outcome of an eligibility evaluation. Denials are ordinary
// values, never errors.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

// Allowed reports whether the decision permits the attempt.
func (d Decision) Allowed() bool {
	return d.Outcome != OutcomeDeny
}

// DecisionDeny returns a denial carrying the given reason.
func DecisionDeny(reason string) Decision {
	return Decision{Outcome: OutcomeDeny, Reason: reason}
}

// EvaluateRegistration decides a registration attempt. Checks run in a fixed
// order so denial reasons are deterministic: event date, existing active
// registration, capacity. A reactivation re-checks capacity because it
// increases the active count by one. existing is the row for the
// (event, participant) pair in any state, or nil.
func EvaluateRegistration(event *Event, activeCount int, existing *Registration, now time.Time) Decision {
	if event.HasPassed(now) {
		return DecisionDeny(ReasonEventPassed)
	}
	if existing != nil && !existing.Cancelled {
		return DecisionDeny(ReasonAlreadyRegistered)
	}
	if activeCount >= event.Capacity {
		return DecisionDeny(ReasonAtCapacity)
	}
	if existing != nil {
		return Decision{Outcome: OutcomeAllowReactivate}
	}
	return Decision{Outcome: OutcomeAllowNew}
}

// EvaluateCancellation decides a cancellation attempt. Cancellation is
// permitted even after the event date has passed so users can retroactively
// record non-attendance.
func EvaluateCancellation(existing *Registration, now time.Time) Decision {
	if existing == nil || existing.Cancelled {
		return DecisionDeny(ReasonNotRegistered)
	}
	return Decision{Outcome: OutcomeAllow}
}

// EvaluateAttendanceMark decides an attendance-marking attempt. Marking an
// already-attended registration is an allowed no-op, not an error.
func EvaluateAttendanceMark(existing *Registration) Decision {
	if existing == nil {
		return DecisionDeny(ReasonNotRegistered)
	}
	if existing.Cancelled {
		return DecisionDeny(ReasonRegistrationCancelled)
	}
	return Decision{Outcome: OutcomeAllow}
}
