package callsdk

// CallState is the lifecycle state of a call as reported by the SDK.
type CallState int

const (
	CallStateNone CallState = iota
	CallStateConnecting
	CallStateRinging
	CallStateConnected
	CallStateLocalHold
	CallStateRemoteHold
	CallStateDisconnecting
	CallStateDisconnected
)

func (s CallState) String() string {
	switch s {
	case CallStateConnecting:
		return "connecting"
	case CallStateRinging:
		return "ringing"
	case CallStateConnected:
		return "connected"
	case CallStateLocalHold:
		return "local_hold"
	case CallStateRemoteHold:
		return "remote_hold"
	case CallStateDisconnecting:
		return "disconnecting"
	case CallStateDisconnected:
		return "disconnected"
	default:
		return "none"
	}
}

// Direction tells whether a call was placed or received locally.
type Direction int

const (
	DirectionOutgoing Direction = iota
	DirectionIncoming
)

// ParticipantState is the connection state of a remote participant.
type ParticipantState int

const (
	ParticipantStateIdle ParticipantState = iota
	ParticipantStateConnecting
	ParticipantStateConnected
	ParticipantStateHold
	ParticipantStateDisconnected
)

func (s ParticipantState) String() string {
	switch s {
	case ParticipantStateConnecting:
		return "connecting"
	case ParticipantStateConnected:
		return "connected"
	case ParticipantStateHold:
		return "hold"
	case ParticipantStateDisconnected:
		return "disconnected"
	default:
		return "idle"
	}
}

// StreamType distinguishes camera video from screen sharing.
type StreamType int

const (
	StreamTypeVideo StreamType = iota
	StreamTypeScreenSharing
)

// PermissionState is the platform permission for a device kind.
type PermissionState int

const (
	PermissionUnknown PermissionState = iota
	PermissionPrompt
	PermissionGranted
	PermissionDenied
)

// Permissions holds the current audio and video permission states.
type Permissions struct {
	Audio PermissionState
	Video PermissionState
}

// DeviceInfo describes one camera or microphone.
type DeviceInfo struct {
	ID   string
	Name string
}
