package syncer

// State names the sync controller's position in the state machine from
// spec §4.4. Control flow in this rewrite is an explicit loop rather than
// captured-pointer recursion (spec §9's design note), but every state the
// spec names is still visited and observable via Controller.State.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateConnecting
	StateHandshaking
	StateAwaitingSchema
	StateSyncing
	StateReading
	StateBackoff
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResolving:
		return "Resolving"
	case StateConnecting:
		return "Connecting"
	case StateHandshaking:
		return "Handshaking"
	case StateAwaitingSchema:
		return "AwaitingSchema"
	case StateSyncing:
		return "Syncing"
	case StateReading:
		return "Reading"
	case StateBackoff:
		return "Backoff"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}
