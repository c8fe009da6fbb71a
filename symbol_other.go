//go:build !windows

package getsymbol

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// dlfcn holds the loader entry points. purego.Dlopen always passes a C
// string, and only a NULL path means the main program everywhere.
type dlfcn struct {
	dlopen  func(path *byte, mode int) uintptr
	dlsym   func(handle uintptr, name string) uintptr
	dlclose func(handle uintptr) int
	dlerror func() uintptr
}

var loadDlfcn = sync.OnceValues(func() (*dlfcn, error) {
	fns := &dlfcn{}
	for name, fptr := range map[string]any{
		"dlopen":  &fns.dlopen,
		"dlsym":   &fns.dlsym,
		"dlclose": &fns.dlclose,
		"dlerror": &fns.dlerror,
	} {
		addr, err := purego.Dlsym(purego.RTLD_DEFAULT, name)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
		purego.RegisterFunc(fptr, addr)
	}
	return fns, nil
})

func lookupSelf(name string) (uintptr, error) {
	fns, err := loadDlfcn()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrHandleUnavailable, err)
	}
	return fns.lookup(name)
}

// lookup runs on one OS thread: dlerror state is thread-local.
func (d *dlfcn) lookup(name string) (uintptr, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	handle := d.dlopen(nil, purego.RTLD_LAZY)
	if handle == 0 {
		return 0, fmt.Errorf("%w: dlopen: %s", ErrHandleUnavailable, d.lastError())
	}
	defer func() {
		d.dlclose(handle)
		d.lastError()
	}()

	addr := d.dlsym(handle, name)
	if addr == 0 {
		return 0, fmt.Errorf("%w: dlsym: %s", ErrNotFound, d.lastError())
	}
	return addr, nil
}

// lastError reads and thereby clears the pending dlerror message.
func (d *dlfcn) lastError() string {
	msg := d.dlerror()
	if msg == 0 {
		return "unknown error"
	}
	return goString((*byte)(unsafe.Pointer(msg)))
}
