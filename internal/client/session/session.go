// Package session keeps the store's call subtree consistent with the
// calling SDK's view. It subscribes to call, participant and stream
// notifications, projects them into state actions, and owns every
// subscription handle it creates so nothing leaks when entities go away.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smolyakov/huddle/internal/client/callsdk"
	"github.com/smolyakov/huddle/internal/client/state"
)

// Synchronizer mirrors the SDK's call lifecycle into the store.
// Policy: at most one concurrent call; a second incoming call is
// rejected at the SDK before it ever reaches state.
type Synchronizer struct {
	agent callsdk.Agent
	store *state.Store
	log   *zerolog.Logger

	mu      sync.Mutex
	subs    map[string][]callsdk.Subscription
	tracked callsdk.Call
	root    callsdk.Subscription
}

// New creates a synchronizer over a live agent.
func New(agent callsdk.Agent, store *state.Store, logger *zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		agent: agent,
		store: store,
		log:   logger,
		subs:  make(map[string][]callsdk.Subscription),
	}
}

// Start begins observing the agent's call list.
func (s *Synchronizer) Start() {
	s.root = s.agent.OnCallsUpdated(s.handleCallsUpdated)
}

// Stop tears down every subscription handle.
func (s *Synchronizer) Stop() {
	if s.root != nil {
		s.root.Close()
		s.root = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, handles := range s.subs {
		for _, h := range handles {
			h.Close()
		}
		delete(s.subs, key)
	}
	s.tracked = nil
}

// TrackedCall returns the call currently projected into state, or nil
// when no call is active.
func (s *Synchronizer) TrackedCall() callsdk.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracked
}

func (s *Synchronizer) handleCallsUpdated(added, removed []callsdk.Call) {
	for _, call := range added {
		s.addCall(call)
	}
	for _, call := range removed {
		s.removeCall(call)
	}
}

func (s *Synchronizer) addCall(call callsdk.Call) {
	s.mu.Lock()
	if s.tracked != nil {
		tracked := s.tracked
		s.mu.Unlock()

		if call.Direction() == callsdk.DirectionIncoming {
			s.log.Info().Str("call_id", call.ID()).Str("tracked_call_id", tracked.ID()).
				Msg("rejecting incoming call, another call is active")
			if err := call.Reject(context.Background()); err != nil {
				s.log.Warn().Err(err).Str("call_id", call.ID()).Msg("failed to reject incoming call")
			}
			return
		}
		s.log.Warn().Str("call_id", call.ID()).Msg("ignoring additional outgoing call")
		return
	}
	s.tracked = call

	callID := call.ID()
	// Handlers are installed before the initial snapshot is dispatched
	// so no change notification can slip through between them.
	s.register(callKey(callID),
		call.OnStateChanged(func(st callsdk.CallState) {
			s.store.Dispatch(state.CallStateChanged{ID: callID, State: st})
		}),
		call.OnScreenShareChanged(func(active bool) {
			s.store.Dispatch(state.CallScreenShareChanged{ID: callID, Active: active})
		}),
		call.OnParticipantsUpdated(func(added, removed []callsdk.RemoteParticipant) {
			for _, p := range added {
				s.addParticipant(callID, p)
			}
			for _, p := range removed {
				s.removeParticipant(callID, p)
			}
		}),
	)
	s.mu.Unlock()

	s.store.Dispatch(state.CallAdded{
		ID:                callID,
		State:             call.State(),
		ScreenShareActive: call.IsScreenSharingOn(),
	})

	// Seed the roster from the call's current view.
	for _, p := range call.RemoteParticipants() {
		s.addParticipant(callID, p)
	}
}

func (s *Synchronizer) removeCall(call callsdk.Call) {
	callID := call.ID()

	s.store.Dispatch(state.CallRemoved{ID: callID})

	s.mu.Lock()
	s.closePrefixLocked("call:" + callID)
	s.closePrefixLocked("participant:" + callID + "/")
	s.closePrefixLocked("stream:" + callID + "/")
	if s.tracked != nil && s.tracked.ID() == callID {
		s.tracked = nil
	}
	s.mu.Unlock()
}

func (s *Synchronizer) addParticipant(callID string, p callsdk.RemoteParticipant) {
	participantID := p.ID()

	s.mu.Lock()
	s.register(participantKey(callID, participantID),
		p.OnStateChanged(func(st callsdk.ParticipantState) {
			s.store.Dispatch(state.ParticipantChanged{
				CallID: callID, ID: participantID,
				State: st, IsSpeaking: p.IsSpeaking(),
			})
		}),
		p.OnSpeakingChanged(func(speaking bool) {
			s.store.Dispatch(state.ParticipantChanged{
				CallID: callID, ID: participantID,
				State: p.State(), IsSpeaking: speaking,
			})
		}),
		p.OnStreamsUpdated(func(added, removed []callsdk.RemoteVideoStream) {
			for _, stream := range added {
				s.watchStream(callID, participantID, stream)
			}
			for _, stream := range removed {
				s.dropStream(callID, participantID, stream)
			}
		}),
	)
	s.mu.Unlock()

	s.store.Dispatch(state.ParticipantAdded{
		CallID: callID, ID: participantID,
		State: p.State(), IsSpeaking: p.IsSpeaking(),
	})

	// Surface streams the participant already carries.
	for _, stream := range p.VideoStreams() {
		s.watchStream(callID, participantID, stream)
	}
}

func (s *Synchronizer) removeParticipant(callID string, p callsdk.RemoteParticipant) {
	participantID := p.ID()

	s.mu.Lock()
	s.closePrefixLocked(participantKey(callID, participantID))
	s.closePrefixLocked(streamPrefix(callID, participantID))
	s.mu.Unlock()

	for _, stream := range p.VideoStreams() {
		s.store.Dispatch(state.StreamRemoved{CallID: callID, StreamID: stream.ID()})
	}
	s.store.Dispatch(state.ParticipantRemoved{CallID: callID, ID: participantID})
}

func (s *Synchronizer) watchStream(callID, participantID string, stream callsdk.RemoteVideoStream) {
	streamID := stream.ID()

	s.mu.Lock()
	s.register(streamKey(callID, participantID, streamID),
		stream.OnAvailabilityChanged(func(available bool) {
			if available {
				s.store.Dispatch(state.StreamAdded{
					CallID: callID, StreamID: streamID,
					ParticipantID: participantID, Type: stream.MediaType(),
				})
			} else {
				s.store.Dispatch(state.StreamRemoved{CallID: callID, StreamID: streamID})
			}
		}),
	)
	s.mu.Unlock()

	if stream.IsAvailable() {
		s.store.Dispatch(state.StreamAdded{
			CallID: callID, StreamID: streamID,
			ParticipantID: participantID, Type: stream.MediaType(),
		})
	}
}

func (s *Synchronizer) dropStream(callID, participantID string, stream callsdk.RemoteVideoStream) {
	s.mu.Lock()
	s.closePrefixLocked(streamKey(callID, participantID, stream.ID()))
	s.mu.Unlock()

	s.store.Dispatch(state.StreamRemoved{CallID: callID, StreamID: stream.ID()})
}

// register records subscription handles under an entity key.
// Caller holds s.mu.
func (s *Synchronizer) register(key string, handles ...callsdk.Subscription) {
	s.subs[key] = append(s.subs[key], handles...)
}

// closePrefixLocked closes and forgets every handle whose key starts
// with the prefix. Caller holds s.mu.
func (s *Synchronizer) closePrefixLocked(prefix string) {
	for key, handles := range s.subs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, h := range handles {
			h.Close()
		}
		delete(s.subs, key)
	}
}

func callKey(callID string) string {
	return "call:" + callID
}

func participantKey(callID, participantID string) string {
	return fmt.Sprintf("participant:%s/%s", callID, participantID)
}

func streamPrefix(callID, participantID string) string {
	return fmt.Sprintf("stream:%s/%s/", callID, participantID)
}

func streamKey(callID, participantID string, streamID int) string {
	return fmt.Sprintf("stream:%s/%s/%d", callID, participantID, streamID)
}
