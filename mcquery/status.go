// Package mcquery polls a Minecraft server and classifies the result
// into a ServerStatus snapshot consumed by the presence and roster
// reconcilers.
package mcquery

import "fmt"

// DefaultPort is the default Minecraft server port.
const DefaultPort uint16 = 25565

// Kind is the classification of one poll cycle.
type Kind int

const (
	// KindOnline means a status query succeeded.
	KindOnline Kind = iota
	// KindOffline means the server actively refused the connection, or
	// the legacy fallback also failed. Treated as ground truth that the
	// server process is down.
	KindOffline
	// KindUnreachable means both query variants failed without a refused
	// connection (timeout, protocol mismatch, malformed response). It is
	// presented exactly like KindOffline but kept distinct for
	// diagnostics.
	KindUnreachable
)

func (k Kind) String() string {
	switch k {
	case KindOnline:
		return "online"
	case KindOffline:
		return "offline"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Player is one entry of the server's player sample.
type Player struct {
	ID   string
	Name string
}

// ServerStatus is the immutable result of one poll cycle. A fresh value
// is produced every cycle and discarded after both reconcilers consume it.
type ServerStatus struct {
	Kind        Kind
	OnlineCount int
	Players     []Player
	Description string
	// Icon is a data-URI image; never empty. When the source provides no
	// favicon, or the server is down, it holds the matching fallback icon.
	Icon string
}

// HostLabel formats a server identity, omitting the port when it is the
// default.
func HostLabel(host string, port uint16) string {
	if port == DefaultPort {
		return host
	}
	return fmt.Sprintf("%s:%d", host, port)
}
