// Package vkrt is the runtime support imported by generated loaders. It
// resolves entry points through a proc-address chain and calls them through
// libffi.
package vkrt

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/jupiterrider/ffi"
)

// Resolver looks up an entry point for a dispatchable handle. A zero
// result means the symbol is not available.
type Resolver interface {
	Resolve(handle uintptr, symbol string) uintptr
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(handle uintptr, symbol string) uintptr

func (f ResolverFunc) Resolve(handle uintptr, symbol string) uintptr {
	return f(handle, symbol)
}

// Policy decides what happens when a resolver returns no address.
type Policy int

const (
	// Strict fails the whole table on the first missing command.
	Strict Policy = iota
	// Lenient leaves missing commands unset.
	Lenient
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses "strict" or "lenient".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return 0, fmt.Errorf("unknown policy %q (want strict or lenient)", s)
}

// LoadError reports a command the resolver could not find.
type LoadError struct {
	Symbol string
}

func (e *LoadError) Error() string {
	return "vkrt: unable to load " + e.Symbol
}

// Command is a resolved entry point with a prepared call interface. The
// zero value is an unset command.
type Command struct {
	symbol string
	addr   uintptr
	cif    *ffi.Cif
}

// Load resolves symbol for handle and prepares its call interface.
func Load(r Resolver, handle uintptr, symbol string, policy Policy, ret *ffi.Type, args ...*ffi.Type) (Command, error) {
	addr := r.Resolve(handle, symbol)
	if addr == 0 {
		if policy == Lenient {
			return Command{symbol: symbol}, nil
		}
		return Command{}, &LoadError{Symbol: symbol}
	}
	return Prepare(symbol, addr, ret, args...)
}

// Prepare builds a command for a known address.
func Prepare(symbol string, addr uintptr, ret *ffi.Type, args ...*ffi.Type) (Command, error) {
	var cif ffi.Cif
	if status := ffi.PrepCif(&cif, ffi.DefaultAbi, uint32(len(args)), ret, args...); status != ffi.OK {
		return Command{}, fmt.Errorf("vkrt: prepare %s: %v", symbol, status)
	}
	return Command{symbol: symbol, addr: addr, cif: &cif}, nil
}

// IsNull reports whether the command was not resolved.
func (c Command) IsNull() bool { return c.addr == 0 }

// Addr returns the entry point address.
func (c Command) Addr() uintptr { return c.addr }

// Symbol returns the native symbol name.
func (c Command) Symbol() string { return c.symbol }

// Call invokes the command. ret points at storage for the return value, or
// is nil for void commands; each arg points at one argument value. Calling
// an unset command panics.
func (c Command) Call(ret unsafe.Pointer, args ...unsafe.Pointer) {
	if c.addr == 0 {
		panic("vkrt: call of unset command " + c.symbol)
	}
	ffi.Call(c.cif, c.addr, ret, args...)
}
