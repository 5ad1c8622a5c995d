// Package permission decides whether a command sender may run a command.
package permission

// Flag is a bitset of command restrictions.
type Flag uint8

// None places no restriction.
const None Flag = 0

const (
	// AdminOnly restricts a command to the administrator.
	AdminOnly Flag = 1 << iota
	// LocalOnly restricts a command to users of the bot's own instance.
	LocalOnly
	// RemoteOnly restricts a command to users of other instances.
	RemoteOnly
)

// Has reports whether f contains every bit of other.
func (f Flag) Has(other Flag) bool {
	return other != 0 && f&other == other
}

// Denial names the restriction that rejected a sender.
type Denial int

const (
	Allowed Denial = iota
	DeniedAdminOnly
	DeniedLocalOnly
	DeniedRemoteOnly
)

func (d Denial) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case DeniedAdminOnly:
		return "admin_only"
	case DeniedLocalOnly:
		return "local_only"
	case DeniedRemoteOnly:
		return "remote_only"
	default:
		return "unknown"
	}
}

// Subject is what the evaluator knows about a sender.
// OriginKnown is false for console senders, which have no instance and skip the origin checks.
type Subject struct {
	IsAdmin     bool
	Host        string
	OriginKnown bool
}

// Evaluate checks required against subject in the order AdminOnly, LocalOnly, RemoteOnly
// and returns the first failing restriction.
func Evaluate(required Flag, subject Subject) Denial {
	if required.Has(AdminOnly) && !subject.IsAdmin {
		return DeniedAdminOnly
	}
	if !subject.OriginKnown {
		return Allowed
	}

	local := subject.Host == ""
	if required.Has(LocalOnly) && !local {
		return DeniedLocalOnly
	}
	if required.Has(RemoteOnly) && local {
		return DeniedRemoteOnly
	}

	return Allowed
}
