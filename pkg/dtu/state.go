package dtu

// ConnectionState is the tri-valued status of a DeviceEndpoint (§3). It is
// purely observational: it never gates or alters request behavior.
type ConnectionState int

const (
	// StateUnknown is the initial state, and the state after any
	// protocol-level parse failure (framing, integrity, decode).
	StateUnknown ConnectionState = iota
	// StateOnline is set after a successful round trip.
	StateOnline
	// StateOffline is set after a transport-level failure (connect,
	// write, read, or timeout).
	StateOffline
)

func (s ConnectionState) String() string {
	switch s {
	case StateOnline:
		return "online"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}
