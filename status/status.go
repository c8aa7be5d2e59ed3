// Package status defines the typed error surface returned by kernel
// operations. Nothing in this module panics or logs on a failure path;
// every mutating call returns a *Error (nil on success) and leaves state
// unchanged where possible, per the kernel's error-handling policy.
package status

import "fmt"

// Kind enumerates the error kinds a kernel call can fail with
// (simulation_errc in the originating specification).
type Kind int

const (
	_ Kind = iota

	// Arena / container growth.
	ErrModelsContainerFull
	ErrConnectionsContainerFull
	ErrDatedMessagesContainerFull
	ErrMessagesContainerFull
	ErrHSMsContainerFull
	ErrObserversContainerFull

	// Identifier resolution.
	ErrUnknownModel
	ErrUnknownPort
	ErrUnknownHSM
	ErrUnknownSource

	// Connection fabric.
	ErrConnectionIncompatible
	ErrConnectionAlreadyExists
	ErrConnectionContainerFull

	// QSS integrator.
	ErrAbstractIntegratorX
	ErrAbstractIntegratorDQ

	// Operator atoms.
	ErrAbstractWSumCoeff
	ErrPowerN
	ErrLogInput
	ErrInverseInput
	ErrCompareThreshold
	ErrFilterThreshold

	// Generator / queue family.
	ErrGeneratorTA
	ErrGeneratorValue
	ErrQueueTA

	// Constant / time_func.
	ErrConstantOffset
	ErrConstantValue
	ErrTimeFuncOffset
	ErrTimeFuncTimestep

	// Output staging.
	ErrEmittingPortsFull

	// HSM.
	ErrTopState
	ErrSourceUnconfigured
	ErrTransitionDisallowed

	// External source driver.
	ErrSourceEmpty
	ErrSourceExhausted

	// Archiver.
	ErrArchiveMagic
	ErrArchiveVersion
	ErrArchiveTruncated
	ErrArchiveUnknownKind
)

var kindNames = map[Kind]string{
	ErrModelsContainerFull:       "models container full",
	ErrConnectionsContainerFull:  "connections container full",
	ErrDatedMessagesContainerFull: "dated messages container full",
	ErrMessagesContainerFull:     "messages container full",
	ErrHSMsContainerFull:         "hsms container full",
	ErrObserversContainerFull:    "observers container full",
	ErrUnknownModel:              "unknown model",
	ErrUnknownPort:               "unknown port",
	ErrUnknownHSM:                "unknown hsm",
	ErrUnknownSource:             "unknown source",
	ErrConnectionIncompatible:    "connection incompatible",
	ErrConnectionAlreadyExists:   "connection already exists",
	ErrConnectionContainerFull:   "connection container full",
	ErrAbstractIntegratorX:       "abstract integrator x error",
	ErrAbstractIntegratorDQ:      "abstract integrator dq error",
	ErrAbstractWSumCoeff:         "abstract wsum coeff error",
	ErrPowerN:                    "power n error",
	ErrLogInput:                  "log input error",
	ErrInverseInput:              "inverse input error",
	ErrCompareThreshold:          "compare threshold error",
	ErrFilterThreshold:           "filter threshold error",
	ErrGeneratorTA:               "generator ta abnormal",
	ErrGeneratorValue:            "generator value error",
	ErrQueueTA:                   "queue ta error",
	ErrConstantOffset:            "constant offset error",
	ErrConstantValue:             "constant value error",
	ErrTimeFuncOffset:            "time_func offset error",
	ErrTimeFuncTimestep:          "time_func timestep error",
	ErrEmittingPortsFull:         "emitting ports full",
	ErrTopState:                  "hsm top state error",
	ErrSourceUnconfigured:        "hsm source unconfigured",
	ErrTransitionDisallowed:      "hsm transition disallowed during enter/exit",
	ErrSourceEmpty:               "external source empty",
	ErrSourceExhausted:           "external source exhausted",
	ErrArchiveMagic:              "archive magic mismatch",
	ErrArchiveVersion:            "archive version unsupported",
	ErrArchiveTruncated:          "archive stream truncated",
	ErrArchiveUnknownKind:        "archive unknown dynamics kind",
}

// Error is the typed failure a kernel call reports. A nil *Error is
// success; callers compare against nil rather than against a zero value.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "success"
	}
	name := kindNames[e.Kind]
	if name == "" {
		name = fmt.Sprintf("kind(%d)", e.Kind)
	}
	if e.Msg == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, e.Msg)
}

// New builds a status error of the given kind with an optional detail
// message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Is reports whether err is a *Error of the given kind, so callers can use
// errors.Is(err, status.New(kind, "")) style checks if they prefer, though
// the common pattern in this module is a direct type switch on Kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok || other == nil {
		return false
	}
	return e.Kind == other.Kind
}
