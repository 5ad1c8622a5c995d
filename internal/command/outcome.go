package command

import (
	"errors"

	"github.com/Proton-105/citrine-bot/internal/permission"
)

var (
	// ErrUsage is returned by a handler to request its usage text be shown.
	ErrUsage = errors.New("command: invalid usage")
	// ErrNoSuchCommand means no command matched the input.
	ErrNoSuchCommand = errors.New("command: no such command")
	// ErrAdminOnly means the command requires the administrator.
	ErrAdminOnly = errors.New("command: admin only")
	// ErrLocalOnly means the command is limited to local users.
	ErrLocalOnly = errors.New("command: local users only")
	// ErrRemoteOnly means the command is limited to remote users.
	ErrRemoteOnly = errors.New("command: remote users only")
)

// Status is the kind of result an execution produced.
type Status int

const (
	StatusOK Status = iota
	StatusUsage
	StatusDenied
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUsage:
		return "usage"
	case StatusDenied:
		return "denied"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Outcome is the result of Registry.Execute.
type Outcome struct {
	Status Status
	// Text is the handler reply for StatusOK and the usage text for StatusUsage.
	Text   string
	Denial permission.Denial
	// Command is the canonical name of the resolved command, empty when none matched.
	Command string
}

// Err converts a non-OK outcome into its sentinel error. Usage outcomes are not errors.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusNotFound:
		return ErrNoSuchCommand
	case StatusDenied:
		switch o.Denial {
		case permission.DeniedAdminOnly:
			return ErrAdminOnly
		case permission.DeniedLocalOnly:
			return ErrLocalOnly
		case permission.DeniedRemoteOnly:
			return ErrRemoteOnly
		}
	}
	return nil
}
