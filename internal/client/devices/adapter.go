// Package devices mirrors the platform's camera/microphone permission
// and enumeration state into the store and picks sensible defaults.
package devices

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/smolyakov/huddle/internal/client/callsdk"
	"github.com/smolyakov/huddle/internal/client/state"
)

// Adapter keeps the store's device subtree consistent with the SDK's
// device manager.
type Adapter struct {
	dm    callsdk.DeviceManager
	store *state.Store
	log   *zerolog.Logger

	subs []callsdk.Subscription
}

// New creates a device adapter.
func New(dm callsdk.DeviceManager, store *state.Store, logger *zerolog.Logger) *Adapter {
	return &Adapter{
		dm:    dm,
		store: store,
		log:   logger,
	}
}

// Start asks for audio and video permission once, seeds the device
// lists and begins observing changes.
func (a *Adapter) Start(ctx context.Context) {
	perms, err := a.dm.AskPermission(ctx, true, true)
	if err != nil {
		a.log.Warn().Err(err).Msg("permission request failed")
	} else {
		a.store.Dispatch(state.PermissionsChanged{Permissions: perms})
	}

	if perms.Audio == callsdk.PermissionGranted {
		a.refreshMicrophones(ctx)
	}
	if perms.Video == callsdk.PermissionGranted {
		a.refreshCameras(ctx)
	}

	a.subs = append(a.subs,
		a.dm.OnAudioDevicesUpdated(func() {
			a.refreshMicrophones(context.Background())
		}),
		a.dm.OnVideoDevicesUpdated(func() {
			a.refreshCameras(context.Background())
		}),
		a.dm.OnPermissionChanged(func() {
			a.refreshPermissions(context.Background())
		}),
	)
}

// Stop releases the adapter's subscription handles.
func (a *Adapter) Stop() {
	for _, sub := range a.subs {
		sub.Close()
	}
	a.subs = nil
}

func (a *Adapter) refreshPermissions(ctx context.Context) {
	perms, err := a.dm.QueryPermissions(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to query permissions")
		return
	}
	a.store.Dispatch(state.PermissionsChanged{Permissions: perms})
}

func (a *Adapter) refreshMicrophones(ctx context.Context) {
	list, err := a.dm.Microphones(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to enumerate microphones")
		return
	}
	a.store.Dispatch(state.MicrophonesUpdated{Devices: list})

	selected := a.store.Snapshot().Devices.SelectedMicrophone
	a.applySelection(ctx, list, selected, "microphone",
		a.dm.SelectMicrophone,
		func(d *callsdk.DeviceInfo) { a.store.Dispatch(state.MicrophoneSelected{Device: d}) },
	)
}

func (a *Adapter) refreshCameras(ctx context.Context) {
	list, err := a.dm.Cameras(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to enumerate cameras")
		return
	}
	a.store.Dispatch(state.CamerasUpdated{Devices: list})

	selected := a.store.Snapshot().Devices.SelectedCamera
	a.applySelection(ctx, list, selected, "camera",
		a.dm.SelectCamera,
		func(d *callsdk.DeviceInfo) { a.store.Dispatch(state.CameraSelected{Device: d}) },
	)
}

// applySelection picks the first device when nothing is selected. When
// the current selection vanished from the refreshed list it is
// re-applied anyway, letting the SDK reject an invalid device; the
// selection in state is kept either way.
func (a *Adapter) applySelection(
	ctx context.Context,
	list []callsdk.DeviceInfo,
	selected *callsdk.DeviceInfo,
	kind string,
	selectFn func(context.Context, callsdk.DeviceInfo) error,
	commit func(*callsdk.DeviceInfo),
) {
	if selected == nil {
		if len(list) == 0 {
			return
		}
		first := list[0]
		if err := selectFn(ctx, first); err != nil {
			a.log.Warn().Err(err).Str("kind", kind).Str("device", first.ID).Msg("failed to select default device")
			return
		}
		commit(&first)
		return
	}

	if containsDevice(list, selected.ID) {
		return
	}

	a.log.Warn().Str("kind", kind).Str("device", selected.ID).Msg("selected device no longer enumerated, re-applying")
	if err := selectFn(ctx, *selected); err != nil {
		a.log.Warn().Err(err).Str("kind", kind).Str("device", selected.ID).Msg("failed to re-apply stale device")
	}
}

func containsDevice(list []callsdk.DeviceInfo, id string) bool {
	for _, d := range list {
		if d.ID == id {
			return true
		}
	}
	return false
}
