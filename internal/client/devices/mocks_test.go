package devices

import (
	"context"

	"github.com/smolyakov/huddle/internal/client/callsdk"
)

type nopSubscription struct{}

func (nopSubscription) Close() {}

type fakeDeviceManager struct {
	cameras     []callsdk.DeviceInfo
	microphones []callsdk.DeviceInfo
	permissions callsdk.Permissions

	selectMicCalls []callsdk.DeviceInfo
	selectCamCalls []callsdk.DeviceInfo
	selectMicErr   error

	audioFns      []func()
	videoFns      []func()
	permissionFns []func()
}

func (f *fakeDeviceManager) Cameras(context.Context) ([]callsdk.DeviceInfo, error) {
	return f.cameras, nil
}

func (f *fakeDeviceManager) Microphones(context.Context) ([]callsdk.DeviceInfo, error) {
	return f.microphones, nil
}

func (f *fakeDeviceManager) AskPermission(context.Context, bool, bool) (callsdk.Permissions, error) {
	return f.permissions, nil
}

func (f *fakeDeviceManager) QueryPermissions(context.Context) (callsdk.Permissions, error) {
	return f.permissions, nil
}

func (f *fakeDeviceManager) SelectCamera(_ context.Context, d callsdk.DeviceInfo) error {
	f.selectCamCalls = append(f.selectCamCalls, d)
	return nil
}

func (f *fakeDeviceManager) SelectMicrophone(_ context.Context, d callsdk.DeviceInfo) error {
	f.selectMicCalls = append(f.selectMicCalls, d)
	return f.selectMicErr
}

func (f *fakeDeviceManager) OnVideoDevicesUpdated(fn func()) callsdk.Subscription {
	f.videoFns = append(f.videoFns, fn)
	return nopSubscription{}
}

func (f *fakeDeviceManager) OnAudioDevicesUpdated(fn func()) callsdk.Subscription {
	f.audioFns = append(f.audioFns, fn)
	return nopSubscription{}
}

func (f *fakeDeviceManager) OnPermissionChanged(fn func()) callsdk.Subscription {
	f.permissionFns = append(f.permissionFns, fn)
	return nopSubscription{}
}

func (f *fakeDeviceManager) FireAudioDevicesUpdated() {
	for _, fn := range f.audioFns {
		fn()
	}
}

func (f *fakeDeviceManager) FireVideoDevicesUpdated() {
	for _, fn := range f.videoFns {
		fn()
	}
}
