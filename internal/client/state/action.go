package state

import "github.com/smolyakov/huddle/internal/client/callsdk"

// Action is an immutable description of one state change. Actions are
// applied centrally by the store's run loop; handlers never touch the
// state tree directly.
type Action interface {
	isAction()
}

// ==== Session ====

// IdentitySet records the calling identity issued by the backend.
type IdentitySet struct {
	UserID      string
	DisplayName string
}

// GroupJoined records the group/session id the client participates in.
type GroupJoined struct {
	GroupID string
}

// ==== Call lifecycle ====

// CallAdded registers the tracked call with its initial snapshot.
type CallAdded struct {
	ID                string
	State             callsdk.CallState
	ScreenShareActive bool
}

// CallStateChanged updates the tracked call's lifecycle state.
type CallStateChanged struct {
	ID    string
	State callsdk.CallState
}

// CallScreenShareChanged updates the remote screen-share flag.
type CallScreenShareChanged struct {
	ID     string
	Active bool
}

// CallRemoved drops the tracked call. Always bumps the attempt counter;
// clears the call/controls/streams subtrees only when ID matches the
// tracked call.
type CallRemoved struct {
	ID string
}

// ==== Participants and streams ====

// ParticipantAdded inserts a participant into the roster.
type ParticipantAdded struct {
	CallID     string
	ID         string
	State      callsdk.ParticipantState
	IsSpeaking bool
}

// ParticipantChanged updates a participant's state or speaking flag.
type ParticipantChanged struct {
	CallID     string
	ID         string
	State      callsdk.ParticipantState
	IsSpeaking bool
}

// ParticipantRemoved drops a participant from the roster.
type ParticipantRemoved struct {
	CallID string
	ID     string
}

// StreamAdded surfaces an available remote video stream.
type StreamAdded struct {
	CallID        string
	StreamID      int
	ParticipantID string
	Type          callsdk.StreamType
}

// StreamRemoved drops a no-longer-available stream.
type StreamRemoved struct {
	CallID   string
	StreamID int
}

// ==== Devices ====

// CamerasUpdated replaces the enumerated camera list.
type CamerasUpdated struct {
	Devices []callsdk.DeviceInfo
}

// MicrophonesUpdated replaces the enumerated microphone list.
type MicrophonesUpdated struct {
	Devices []callsdk.DeviceInfo
}

// CameraSelected records the active camera.
type CameraSelected struct {
	Device *callsdk.DeviceInfo
}

// MicrophoneSelected records the active microphone.
type MicrophoneSelected struct {
	Device *callsdk.DeviceInfo
}

// PermissionsChanged records the current device permissions.
type PermissionsChanged struct {
	Permissions callsdk.Permissions
}

// ==== Controls ====

// MicMutedSet commits a confirmed microphone mute toggle.
type MicMutedSet struct {
	Muted bool
}

// ScreenSharingSet commits a confirmed screen-share toggle.
type ScreenSharingSet struct {
	Active bool
}

// ==== Files ====

// FilesListed replaces the known metadata list; resolved content and
// in-flight download flags of already tracked ids are preserved.
type FilesListed struct {
	Files []FileMetadata
}

// FileDownloadStarted marks a file as downloading.
type FileDownloadStarted struct {
	ID string
}

// FileContentResolved attaches downloaded bytes to a file record.
type FileContentResolved struct {
	ID      string
	Content []byte
}

func (IdentitySet) isAction()            {}
func (GroupJoined) isAction()            {}
func (CallAdded) isAction()              {}
func (CallStateChanged) isAction()       {}
func (CallScreenShareChanged) isAction() {}
func (CallRemoved) isAction()            {}
func (ParticipantAdded) isAction()       {}
func (ParticipantChanged) isAction()     {}
func (ParticipantRemoved) isAction()     {}
func (StreamAdded) isAction()            {}
func (StreamRemoved) isAction()          {}
func (CamerasUpdated) isAction()         {}
func (MicrophonesUpdated) isAction()     {}
func (CameraSelected) isAction()         {}
func (MicrophoneSelected) isAction()     {}
func (PermissionsChanged) isAction()     {}
func (MicMutedSet) isAction()            {}
func (ScreenSharingSet) isAction()       {}
func (FilesListed) isAction()            {}
func (FileDownloadStarted) isAction()    {}
func (FileContentResolved) isAction()    {}
