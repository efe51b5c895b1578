// Package controls toggles the local media switches of the active call
// and keeps the committed flags in the state store. Flags flip only
// after the platform confirmed the action.
package controls

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/smolyakov/huddle/internal/client/callsdk"
	"github.com/smolyakov/huddle/internal/client/state"
)

// Controls drives the mute and screen-share toggles.
type Controls struct {
	store *state.Store
	log   *zerolog.Logger
}

// New creates the controls facade over the state store.
func New(store *state.Store, logger *zerolog.Logger) *Controls {
	return &Controls{store: store, log: logger}
}

// ToggleMicrophone flips the mute state of the given call. The committed
// flag changes only when the platform call succeeds.
func (c *Controls) ToggleMicrophone(ctx context.Context, call callsdk.Call) {
	if call == nil {
		c.log.Warn().Msg("toggle microphone with no active call")
		return
	}

	muted := c.store.Snapshot().Controls.MicMuted
	var err error
	if muted {
		err = call.Unmute(ctx)
	} else {
		err = call.Mute(ctx)
	}
	if err != nil {
		c.log.Error().Err(err).Bool("muted", muted).Msg("microphone toggle failed")
		return
	}

	c.store.Dispatch(state.MicMutedSet{Muted: !muted})
}

// ToggleScreenShare flips local screen sharing on the given call.
func (c *Controls) ToggleScreenShare(ctx context.Context, call callsdk.Call) {
	if call == nil {
		c.log.Warn().Msg("toggle screen share with no active call")
		return
	}

	sharing := c.store.Snapshot().Controls.ScreenSharing
	var err error
	if sharing {
		err = call.StopScreenShare(ctx)
	} else {
		err = call.StartScreenShare(ctx)
	}
	if err != nil {
		c.log.Error().Err(err).Bool("sharing", sharing).Msg("screen share toggle failed")
		return
	}

	c.store.Dispatch(state.ScreenSharingSet{Active: !sharing})
}
