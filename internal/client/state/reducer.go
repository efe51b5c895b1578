package state

// reduce maps the current snapshot and one action to the next snapshot.
// Subtrees touched by the action are copied first; untouched subtrees
// are shared between consecutive snapshots.
func reduce(s State, action Action) State {
	switch a := action.(type) {

	case IdentitySet:
		s.UserID = a.UserID
		s.DisplayName = a.DisplayName

	case GroupJoined:
		s.GroupID = a.GroupID

	case CallAdded:
		// Single concurrent call: a second CallAdded is ignored. The
		// synchronizer rejects the SDK call upstream; this is the last
		// line of defense for state consistency.
		if s.Call != nil {
			return s
		}
		s.Call = &CallInfo{
			ID:                a.ID,
			State:             a.State,
			ScreenShareActive: a.ScreenShareActive,
			Participants:      make(map[string]Participant),
			Streams:           make(map[int]Stream),
		}

	case CallStateChanged:
		if s.Call == nil || s.Call.ID != a.ID {
			return s
		}
		call := cloneCall(s.Call)
		call.State = a.State
		s.Call = call

	case CallScreenShareChanged:
		if s.Call == nil || s.Call.ID != a.ID {
			return s
		}
		call := cloneCall(s.Call)
		call.ScreenShareActive = a.Active
		s.Call = call

	case CallRemoved:
		s.CallAttempts++
		if s.Call != nil && s.Call.ID == a.ID {
			s.Call = nil
			s.Controls = Controls{}
		}

	case ParticipantAdded:
		if s.Call == nil || s.Call.ID != a.CallID {
			return s
		}
		call := cloneCall(s.Call)
		call.Participants[a.ID] = Participant{
			ID:         a.ID,
			State:      a.State,
			IsSpeaking: a.IsSpeaking,
		}
		s.Call = call

	case ParticipantChanged:
		if s.Call == nil || s.Call.ID != a.CallID {
			return s
		}
		if _, ok := s.Call.Participants[a.ID]; !ok {
			return s
		}
		call := cloneCall(s.Call)
		call.Participants[a.ID] = Participant{
			ID:         a.ID,
			State:      a.State,
			IsSpeaking: a.IsSpeaking,
		}
		s.Call = call

	case ParticipantRemoved:
		if s.Call == nil || s.Call.ID != a.CallID {
			return s
		}
		call := cloneCall(s.Call)
		delete(call.Participants, a.ID)
		s.Call = call

	case StreamAdded:
		if s.Call == nil || s.Call.ID != a.CallID {
			return s
		}
		call := cloneCall(s.Call)
		call.Streams[a.StreamID] = Stream{
			ID:            a.StreamID,
			ParticipantID: a.ParticipantID,
			Type:          a.Type,
		}
		s.Call = call

	case StreamRemoved:
		if s.Call == nil || s.Call.ID != a.CallID {
			return s
		}
		call := cloneCall(s.Call)
		delete(call.Streams, a.StreamID)
		s.Call = call

	case CamerasUpdated:
		s.Devices.Cameras = a.Devices

	case MicrophonesUpdated:
		s.Devices.Microphones = a.Devices

	case CameraSelected:
		s.Devices.SelectedCamera = a.Device

	case MicrophoneSelected:
		s.Devices.SelectedMicrophone = a.Device

	case PermissionsChanged:
		s.Devices.CameraPermission = a.Permissions.Video
		s.Devices.MicPermission = a.Permissions.Audio

	case MicMutedSet:
		s.Controls.MicMuted = a.Muted

	case ScreenSharingSet:
		s.Controls.ScreenSharing = a.Active

	case FilesListed:
		next := make([]FileRecord, 0, len(a.Files))
		for _, meta := range a.Files {
			record := FileRecord{Meta: meta}
			if prev, ok := s.FileByID(meta.ID); ok {
				record.Content = prev.Content
				record.Downloading = prev.Downloading
			}
			next = append(next, record)
		}
		s.Files = next

	case FileDownloadStarted:
		files := cloneFiles(s.Files)
		for i := range files {
			if files[i].Meta.ID == a.ID {
				files[i].Downloading = true
			}
		}
		s.Files = files

	case FileContentResolved:
		files := cloneFiles(s.Files)
		for i := range files {
			if files[i].Meta.ID == a.ID {
				files[i].Content = a.Content
				files[i].Downloading = false
			}
		}
		s.Files = files
	}

	return s
}
