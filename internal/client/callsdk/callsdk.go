// Package callsdk defines the surface of the externally supplied calling
// SDK as consumed by this client. The SDK owns signaling, media transport
// and device access; this package only names the capabilities the rest of
// the client wires against, so the real SDK binding and the test fakes
// are interchangeable.
package callsdk

import "context"

// Subscription is an owned handle for one event registration.
// Whoever subscribes must Close the handle when the observed entity
// goes away, otherwise the SDK keeps invoking the callback.
type Subscription interface {
	Close()
}

// Agent is the entry point into a live calling session.
type Agent interface {
	// OnCallsUpdated registers a callback for calls appearing and
	// disappearing on the agent.
	OnCallsUpdated(fn func(added, removed []Call)) Subscription

	// DeviceManager exposes camera/microphone enumeration and selection.
	DeviceManager() DeviceManager
}

// Call is one active or pending call.
type Call interface {
	ID() string
	State() CallState
	Direction() Direction
	IsMuted() bool
	IsScreenSharingOn() bool
	RemoteParticipants() []RemoteParticipant

	Reject(ctx context.Context) error
	HangUp(ctx context.Context) error
	Mute(ctx context.Context) error
	Unmute(ctx context.Context) error
	StartScreenShare(ctx context.Context) error
	StopScreenShare(ctx context.Context) error

	OnStateChanged(fn func(CallState)) Subscription
	OnScreenShareChanged(fn func(active bool)) Subscription
	OnParticipantsUpdated(fn func(added, removed []RemoteParticipant)) Subscription
}

// RemoteParticipant is one other party in a call.
type RemoteParticipant interface {
	ID() string
	State() ParticipantState
	IsSpeaking() bool
	VideoStreams() []RemoteVideoStream

	OnStateChanged(fn func(ParticipantState)) Subscription
	OnSpeakingChanged(fn func(speaking bool)) Subscription
	OnStreamsUpdated(fn func(added, removed []RemoteVideoStream)) Subscription
}

// RemoteVideoStream is a remote media stream that can be rendered.
type RemoteVideoStream interface {
	ID() int
	MediaType() StreamType
	IsAvailable() bool

	OnAvailabilityChanged(fn func(available bool)) Subscription
}

// DeviceManager exposes the SDK's device enumeration and permissions.
type DeviceManager interface {
	// Cameras and Microphones return an immutable snapshot of the
	// currently enumerated devices.
	Cameras(ctx context.Context) ([]DeviceInfo, error)
	Microphones(ctx context.Context) ([]DeviceInfo, error)

	// AskPermission prompts for the requested device kinds and returns
	// the resulting permission states.
	AskPermission(ctx context.Context, audio, video bool) (Permissions, error)

	// QueryPermissions reads the current permission states without prompting.
	QueryPermissions(ctx context.Context) (Permissions, error)

	SelectCamera(ctx context.Context, device DeviceInfo) error
	SelectMicrophone(ctx context.Context, device DeviceInfo) error

	OnVideoDevicesUpdated(fn func()) Subscription
	OnAudioDevicesUpdated(fn func()) Subscription
	OnPermissionChanged(fn func()) Subscription
}

// SubscriptionFunc adapts a plain function to the Subscription interface.
type SubscriptionFunc func()

// Close runs the wrapped teardown function.
func (f SubscriptionFunc) Close() { f() }
