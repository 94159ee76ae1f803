package domain

// SessionState tracks the receiving-side state machine. The sender uses a
// subset (Streaming and the terminal states).
type SessionState int

const (
	// AwaitingKeyConfirmation is the initial receiver state: no frame may be
	// processed until the peer's fingerprint has been confirmed.
	AwaitingKeyConfirmation SessionState = iota
	Streaming
	Completed
	Failed
	Rejected
)

func (s SessionState) String() string {
	switch s {
	case AwaitingKeyConfirmation:
		return "awaiting-key-confirmation"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible. A new session
// must be created for the next message.
func (s SessionState) Terminal() bool {
	return s == Completed || s == Failed || s == Rejected
}

// Session binds one KeyMaterial to one logical message exchange. Its counters
// are mutated only by the owning coordinator's single drive loop.
type Session struct {
	ID             string
	Fingerprint    Fingerprint
	State          SessionState
	FramesSent     uint64
	FramesReceived uint64
}
