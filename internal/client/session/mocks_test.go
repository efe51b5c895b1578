package session

import (
	"context"
	"errors"
	"sync"

	"github.com/smolyakov/huddle/internal/client/callsdk"
)

// The fakes below drive the synchronizer the way a real SDK would:
// callbacks fire synchronously from Fire* methods, and every handle
// counts its registrations so teardown can be asserted.

type fakeSubscription struct {
	closed bool
	onTop  *subCounter
}

func (f *fakeSubscription) Close() {
	if !f.closed {
		f.closed = true
		f.onTop.active--
	}
}

type subCounter struct {
	active int
}

func (c *subCounter) track() *fakeSubscription {
	c.active++
	return &fakeSubscription{onTop: c}
}

type fakeAgent struct {
	counter  subCounter
	callsFns []func(added, removed []callsdk.Call)
}

func (a *fakeAgent) OnCallsUpdated(fn func(added, removed []callsdk.Call)) callsdk.Subscription {
	a.callsFns = append(a.callsFns, fn)
	return a.counter.track()
}

func (a *fakeAgent) DeviceManager() callsdk.DeviceManager { return nil }

func (a *fakeAgent) FireCallsUpdated(added, removed []callsdk.Call) {
	for _, fn := range a.callsFns {
		fn(added, removed)
	}
}

type fakeCall struct {
	mu sync.Mutex

	id        string
	state     callsdk.CallState
	direction callsdk.Direction
	muted     bool
	screenOn  bool
	remote    []callsdk.RemoteParticipant

	rejectErr error
	rejected  int

	counter         *subCounter
	stateFns        []func(callsdk.CallState)
	screenFns       []func(bool)
	participantsFns []func(added, removed []callsdk.RemoteParticipant)
}

func newFakeCall(id string, direction callsdk.Direction, counter *subCounter) *fakeCall {
	return &fakeCall{
		id:        id,
		state:     callsdk.CallStateConnecting,
		direction: direction,
		counter:   counter,
	}
}

func (c *fakeCall) ID() string                   { return c.id }
func (c *fakeCall) State() callsdk.CallState     { return c.state }
func (c *fakeCall) Direction() callsdk.Direction { return c.direction }
func (c *fakeCall) IsMuted() bool                { return c.muted }
func (c *fakeCall) IsScreenSharingOn() bool      { return c.screenOn }

func (c *fakeCall) RemoteParticipants() []callsdk.RemoteParticipant {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]callsdk.RemoteParticipant, len(c.remote))
	copy(out, c.remote)
	return out
}

func (c *fakeCall) Reject(context.Context) error {
	c.rejected++
	return c.rejectErr
}

func (c *fakeCall) HangUp(context.Context) error           { return nil }
func (c *fakeCall) Mute(context.Context) error             { c.muted = true; return nil }
func (c *fakeCall) Unmute(context.Context) error           { c.muted = false; return nil }
func (c *fakeCall) StartScreenShare(context.Context) error { return nil }
func (c *fakeCall) StopScreenShare(context.Context) error  { return nil }

func (c *fakeCall) OnStateChanged(fn func(callsdk.CallState)) callsdk.Subscription {
	c.stateFns = append(c.stateFns, fn)
	return c.counter.track()
}

func (c *fakeCall) OnScreenShareChanged(fn func(bool)) callsdk.Subscription {
	c.screenFns = append(c.screenFns, fn)
	return c.counter.track()
}

func (c *fakeCall) OnParticipantsUpdated(fn func(added, removed []callsdk.RemoteParticipant)) callsdk.Subscription {
	c.participantsFns = append(c.participantsFns, fn)
	return c.counter.track()
}

func (c *fakeCall) FireStateChanged(st callsdk.CallState) {
	c.state = st
	for _, fn := range c.stateFns {
		fn(st)
	}
}

func (c *fakeCall) FireParticipantsUpdated(added, removed []callsdk.RemoteParticipant) {
	c.mu.Lock()
	for _, p := range added {
		c.remote = append(c.remote, p)
	}
	for _, p := range removed {
		for i, existing := range c.remote {
			if existing.ID() == p.ID() {
				c.remote = append(c.remote[:i], c.remote[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()

	for _, fn := range c.participantsFns {
		fn(added, removed)
	}
}

type fakeParticipant struct {
	id       string
	state    callsdk.ParticipantState
	speaking bool
	streams  []callsdk.RemoteVideoStream

	counter     *subCounter
	stateFns    []func(callsdk.ParticipantState)
	speakingFns []func(bool)
	streamsFns  []func(added, removed []callsdk.RemoteVideoStream)
}

func newFakeParticipant(id string, counter *subCounter) *fakeParticipant {
	return &fakeParticipant{
		id:      id,
		state:   callsdk.ParticipantStateConnected,
		counter: counter,
	}
}

func (p *fakeParticipant) ID() string                      { return p.id }
func (p *fakeParticipant) State() callsdk.ParticipantState { return p.state }
func (p *fakeParticipant) IsSpeaking() bool                { return p.speaking }

func (p *fakeParticipant) VideoStreams() []callsdk.RemoteVideoStream {
	out := make([]callsdk.RemoteVideoStream, len(p.streams))
	copy(out, p.streams)
	return out
}

func (p *fakeParticipant) OnStateChanged(fn func(callsdk.ParticipantState)) callsdk.Subscription {
	p.stateFns = append(p.stateFns, fn)
	return p.counter.track()
}

func (p *fakeParticipant) OnSpeakingChanged(fn func(bool)) callsdk.Subscription {
	p.speakingFns = append(p.speakingFns, fn)
	return p.counter.track()
}

func (p *fakeParticipant) OnStreamsUpdated(fn func(added, removed []callsdk.RemoteVideoStream)) callsdk.Subscription {
	p.streamsFns = append(p.streamsFns, fn)
	return p.counter.track()
}

func (p *fakeParticipant) FireSpeakingChanged(speaking bool) {
	p.speaking = speaking
	for _, fn := range p.speakingFns {
		fn(speaking)
	}
}

func (p *fakeParticipant) FireStreamsUpdated(added, removed []callsdk.RemoteVideoStream) {
	for _, s := range added {
		p.streams = append(p.streams, s)
	}
	for _, s := range removed {
		for i, existing := range p.streams {
			if existing.ID() == s.ID() {
				p.streams = append(p.streams[:i], p.streams[i+1:]...)
				break
			}
		}
	}
	for _, fn := range p.streamsFns {
		fn(added, removed)
	}
}

type fakeStream struct {
	id        int
	mediaType callsdk.StreamType
	available bool

	counter *subCounter
	fns     []func(bool)
}

func newFakeStream(id int, mediaType callsdk.StreamType, available bool, counter *subCounter) *fakeStream {
	return &fakeStream{
		id:        id,
		mediaType: mediaType,
		available: available,
		counter:   counter,
	}
}

func (s *fakeStream) ID() int                       { return s.id }
func (s *fakeStream) MediaType() callsdk.StreamType { return s.mediaType }
func (s *fakeStream) IsAvailable() bool             { return s.available }

func (s *fakeStream) OnAvailabilityChanged(fn func(bool)) callsdk.Subscription {
	s.fns = append(s.fns, fn)
	return s.counter.track()
}

func (s *fakeStream) FireAvailabilityChanged(available bool) {
	s.available = available
	for _, fn := range s.fns {
		fn(available)
	}
}

var errRejectFailed = errors.New("transport failure")
