package vkrt

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/jupiterrider/ffi"
)

// Library is an open loader library. Commands resolved through it are valid
// until Close.
type Library struct {
	name   string
	lib    ffi.Lib
	gipa   func(ret unsafe.Pointer, args ...unsafe.Pointer)
	device string
}

// Option configures Open.
type Option func(*Library)

// WithDeviceProcAddr overrides the device-level proc-address symbol.
func WithDeviceProcAddr(symbol string) Option {
	return func(l *Library) { l.device = symbol }
}

// DefaultLibraryName returns the platform's loader library file name.
func DefaultLibraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "vulkan-1.dll"
	case "darwin":
		return "libvulkan.1.dylib"
	}
	return "libvulkan.so.1"
}

// Open loads the named library, or the platform default when name is
// empty, and looks up instanceProcAddr (vkGetInstanceProcAddr when empty)
// as the root of the proc-address chain.
func Open(name, instanceProcAddr string, opts ...Option) (*Library, error) {
	if name == "" {
		name = DefaultLibraryName()
	}
	if instanceProcAddr == "" {
		instanceProcAddr = "vkGetInstanceProcAddr"
	}
	lib, err := ffi.Load(name)
	if err != nil {
		return nil, fmt.Errorf("vkrt: failed to load library %s: %w", name, err)
	}
	l := &Library{name: name, lib: lib, device: "vkGetDeviceProcAddr"}
	for _, opt := range opts {
		opt(l)
	}

	fun, err := lib.Prep(instanceProcAddr, &ffi.TypePointer, &ffi.TypePointer, &ffi.TypePointer)
	if err != nil {
		lib.Close()
		return nil, fmt.Errorf("vkrt: %s: %w", name, err)
	}
	l.gipa = func(ret unsafe.Pointer, args ...unsafe.Pointer) { ffi.Call(fun.Cif, fun.Addr, ret, args...) }
	return l, nil
}

// Name returns the library file name.
func (l *Library) Name() string { return l.name }

// Close unloads the library. Every command resolved through it becomes
// invalid.
func (l *Library) Close() error {
	if err := l.lib.Close(); err != nil {
		return fmt.Errorf("vkrt: close %s: %w", l.name, err)
	}
	return nil
}

// InstanceProcAddr resolves global commands (handle 0) and instance
// commands.
func (l *Library) InstanceProcAddr() Resolver {
	return procAddr{call: l.gipa}
}

// DeviceProcAddr returns a resolver for device commands, obtained through
// the instance.
func (l *Library) DeviceProcAddr(instance uintptr) (Resolver, error) {
	gdpa, err := Load(l.InstanceProcAddr(), instance, l.device, Strict,
		&ffi.TypePointer, &ffi.TypePointer, &ffi.TypePointer)
	if err != nil {
		return nil, err
	}
	return procAddr{call: gdpa.Call}, nil
}

// procAddr calls a PFN_vkVoidFunction lookup(handle, name) entry point.
type procAddr struct {
	call func(ret unsafe.Pointer, args ...unsafe.Pointer)
}

func (p procAddr) Resolve(handle uintptr, symbol string) uintptr {
	name, err := cString(symbol)
	if err != nil {
		return 0
	}
	var ret uintptr
	p.call(unsafe.Pointer(&ret), unsafe.Pointer(&handle), unsafe.Pointer(&name))
	runtime.KeepAlive(name)
	return ret
}
