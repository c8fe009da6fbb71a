// Package getsymbol resolves symbols exported by the running executable.
//
// Lookups are scoped to the process's own main image. On POSIX systems the
// main program handle is opened with dlopen(NULL) and released before the
// call returns; on Windows the non-owning handle of the main module is used.
package getsymbol

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	// ErrInvalidName is returned for names the native loader cannot be asked about.
	ErrInvalidName = errors.New("invalid symbol name")

	// ErrHandleUnavailable is returned when no handle to the main image could be obtained.
	ErrHandleUnavailable = errors.New("current process handle unavailable")

	// ErrNotFound is returned when the main image has no symbol with the given name.
	ErrNotFound = errors.New("symbol not found")

	// ErrInvalidTarget is returned by Bind when fptr is not a pointer to a func.
	ErrInvalidTarget = errors.New("bind target must be a non-nil pointer to a func")
)

// Lookup returns the address of name in the current process image, or 0.
// It never panics; every failure collapses to 0.
func Lookup(name string) uintptr {
	addr, _ := Resolve(name)
	return addr
}

// LookupCString is Lookup for a NUL-terminated C string. A nil name yields 0.
func LookupCString(name *byte) uintptr {
	if name == nil {
		return 0
	}
	return Lookup(goString(name))
}

// Resolve is Lookup with the failure kind reported. The error matches
// ErrInvalidName, ErrHandleUnavailable or ErrNotFound under errors.Is.
func Resolve(name string) (uintptr, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return 0, fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	}
	return lookupSelf(name)
}

// Bind resolves name and binds it to the func variable fptr points at.
//
//	var strlen func(string) int
//	if err := getsymbol.Bind(&strlen, "strlen"); err != nil { ... }
func Bind(fptr any, name string) (err error) {
	v := reflect.ValueOf(fptr)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Func {
		return ErrInvalidTarget
	}

	addr, err := Resolve(name)
	if err != nil {
		return err
	}

	// RegisterFunc panics on signatures it cannot marshal.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidTarget, r)
		}
	}()
	purego.RegisterFunc(fptr, addr)
	return nil
}

func goString(p *byte) string {
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
