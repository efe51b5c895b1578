package state

import (
	"time"

	"github.com/smolyakov/huddle/internal/client/callsdk"
)

// FilePhase describes how far a shared file has progressed locally.
type FilePhase string

const (
	// FilePhaseListed means only metadata is known.
	FilePhaseListed FilePhase = "listed"
	// FilePhaseDownloading means a content fetch is in flight.
	FilePhaseDownloading FilePhase = "downloading"
	// FilePhaseAvailable means content bytes are resolved locally.
	FilePhaseAvailable FilePhase = "available"
)

// FileMetadata mirrors the backend's file descriptor.
type FileMetadata struct {
	ID             string
	Name           string
	UploadDateTime time.Time
}

// FileRecord is a file as tracked in client state: metadata plus a
// lazily resolved content reference.
type FileRecord struct {
	Meta        FileMetadata
	Content     []byte
	Downloading bool
}

// Phase derives the file's lifecycle phase from its fields.
func (r FileRecord) Phase() FilePhase {
	switch {
	case r.Content != nil:
		return FilePhaseAvailable
	case r.Downloading:
		return FilePhaseDownloading
	default:
		return FilePhaseListed
	}
}

// Participant is a remote party as tracked in client state.
type Participant struct {
	ID         string
	State      callsdk.ParticipantState
	IsSpeaking bool
}

// Stream is a shareable remote video stream tracked in client state.
type Stream struct {
	ID            int
	ParticipantID string
	Type          callsdk.StreamType
}

// CallInfo is the projection of the one tracked call.
type CallInfo struct {
	ID                string
	State             callsdk.CallState
	ScreenShareActive bool
	Participants      map[string]Participant
	Streams           map[int]Stream
}

// DeviceState mirrors the platform's device and permission view.
type DeviceState struct {
	Cameras            []callsdk.DeviceInfo
	Microphones        []callsdk.DeviceInfo
	SelectedCamera     *callsdk.DeviceInfo
	SelectedMicrophone *callsdk.DeviceInfo
	CameraPermission   callsdk.PermissionState
	MicPermission      callsdk.PermissionState
}

// Controls holds the local media toggles.
type Controls struct {
	MicMuted      bool
	ScreenSharing bool
}

// State is the full client state tree. Snapshots are immutable: every
// update replaces the affected subtree, never mutates it in place.
type State struct {
	UserID      string
	DisplayName string
	GroupID     string

	Call     *CallInfo
	Devices  DeviceState
	Controls Controls
	Files    []FileRecord

	// CallAttempts counts call removals. Advisory state for a policy
	// layer above; nothing in the client retries on its own.
	CallAttempts int
}

// FileByID looks up a tracked file record.
func (s State) FileByID(id string) (FileRecord, bool) {
	for _, f := range s.Files {
		if f.Meta.ID == id {
			return f, true
		}
	}
	return FileRecord{}, false
}

// cloneCall copies the call subtree so the previous snapshot stays intact.
func cloneCall(c *CallInfo) *CallInfo {
	if c == nil {
		return nil
	}
	next := &CallInfo{
		ID:                c.ID,
		State:             c.State,
		ScreenShareActive: c.ScreenShareActive,
		Participants:      make(map[string]Participant, len(c.Participants)),
		Streams:           make(map[int]Stream, len(c.Streams)),
	}
	for k, v := range c.Participants {
		next.Participants[k] = v
	}
	for k, v := range c.Streams {
		next.Streams[k] = v
	}
	return next
}

// cloneFiles copies the files subtree.
func cloneFiles(files []FileRecord) []FileRecord {
	next := make([]FileRecord, len(files))
	copy(next, files)
	return next
}
