// Package bufview implements BufferPointer: a typed, length-tagged view over
// contiguous memory that can be reinterpreted (Cast) or split into
// non-overlapping sub-views (Split) without copying, and passed safely to
// worker goroutines inside a wpool.Scope.
//
// Go has no affine lifetimes, so a compile-time borrow check on a view's
// backing place is realized here as a runtime guard instead: every family of
// views produced from one NewView/NewSliceView call shares a *token, and once
// that token is explicitly Released, any further dereferencing operation
// (Ptr, Slice, Cast, Split) returns a Released BufferError rather than
// touching memory. The owner value stored on the token is what keeps the
// backing allocation reachable to the Go GC for as long as a raw pointer into
// it is in play, since this package never hands memory to C.
package bufview

import (
	"fmt"
	"runtime"
	"unsafe"
)

// token is the shared lifetime record for a family of views derived from the
// same construction call via Split or Cast.
type token struct {
	owner    any
	released bool
}

func (t *token) checkAlive(op string) error {
	if t.released {
		return newError(op, Released, "backing allocation was released")
	}
	return nil
}

// View is a BufferPointer<T>: a typed, bounds-checked window over contiguous
// memory whose validity is tied to the lifetime of tok.owner.
type View[T any] struct {
	addr   unsafe.Pointer
	length int
	tok    *token
}

// NewSliceView builds a View over the backing array of s. s itself is stored
// as the view's owner, so the view stays valid for as long as it (or any
// view split/cast from it) is reachable — this is the safe, ordinary
// constructor; NewView below is the raw-pointer escape hatch used by the
// codec's plane buffers.
func NewSliceView[T any](s []T) View[T] {
	var addr unsafe.Pointer
	if len(s) > 0 {
		addr = unsafe.Pointer(&s[0])
	}
	return View[T]{addr: addr, length: len(s), tok: &token{owner: s}}
}

// NewView constructs a View[T] over length elements of T starting at addr,
// borrowing from whatever place owner keeps alive. owner must be a Go value
// (typically the slice or array addr points into) that the caller guarantees
// will not become unreachable before the returned view (or anything split or
// cast from it) is done being used.
func NewView[T any](addr unsafe.Pointer, length int, owner any) (View[T], error) {
	var zero T
	if length < 0 {
		return View[T]{}, newError("NewView", OutOfBounds, "negative length")
	}
	if addr == nil && length > 0 {
		return View[T]{}, newError("NewView", OutOfBounds, "nil address with nonzero length")
	}
	if align := unsafe.Alignof(zero); addr != nil && uintptr(addr)%align != 0 {
		return View[T]{}, newError("NewView", Misaligned, fmt.Sprintf("address not aligned to %d bytes", align))
	}
	return View[T]{addr: addr, length: length, tok: &token{owner: owner}}, nil
}

// Len returns the number of T elements in the view.
func (v View[T]) Len() int { return v.length }

// IsEmpty reports whether the view has zero elements.
func (v View[T]) IsEmpty() bool { return v.length == 0 }

// Ptr returns the view's base address. The caller must not dereference it
// beyond the view's lifetime.
func (v View[T]) Ptr() (unsafe.Pointer, error) {
	if err := v.tok.checkAlive("Ptr"); err != nil {
		return nil, err
	}
	return v.addr, nil
}

// Slice returns a []T aliasing the view's memory. The returned slice must
// not be retained beyond the view's lifetime.
func (v View[T]) Slice() ([]T, error) {
	if err := v.tok.checkAlive("Slice"); err != nil {
		return nil, err
	}
	if v.length == 0 {
		return nil, nil
	}
	s := unsafe.Slice((*T)(v.addr), v.length)
	runtime.KeepAlive(v.tok.owner)
	return s, nil
}

// Release marks the view's lifetime token as ended. Every view sharing the
// token (including ones produced by Cast or Split before the call) will fail
// any subsequent Ptr/Slice/Cast/Split with a Released BufferError. Callers
// that want to enforce a scope boundary explicitly, rather than relying on
// the owner becoming unreachable, can call this directly.
func (v View[T]) Release() { v.tok.released = true }

// Cast reinterprets the view as a View[U], requiring the view's total byte
// length to be a whole multiple of sizeof(U) and the base address to be
// aligned for U.
func Cast[U any, T any](v View[T]) (View[U], error) {
	if err := v.tok.checkAlive("Cast"); err != nil {
		return View[U]{}, err
	}
	var zt T
	var zu U
	tSize := unsafe.Sizeof(zt)
	uSize := unsafe.Sizeof(zu)
	totalBytes := uintptr(v.length) * tSize
	if uSize == 0 || totalBytes%uSize != 0 {
		return View[U]{}, newError("Cast", SizeMismatch,
			fmt.Sprintf("%d bytes is not a whole multiple of %d", totalBytes, uSize))
	}
	if align := unsafe.Alignof(zu); v.addr != nil && uintptr(v.addr)%align != 0 {
		return View[U]{}, newError("Cast", Misaligned,
			fmt.Sprintf("base address not aligned to %d bytes", align))
	}
	return View[U]{addr: v.addr, length: int(totalBytes / uSize), tok: v.tok}, nil
}

// Split returns (left, right) sharing this view's lifetime token, with
// left.Len()==mid and right.Len()==v.Len()-mid. The two halves address
// disjoint, non-overlapping ranges and may be handed to different workers in
// a wpool.Scope.
func (v View[T]) Split(mid int) (left, right View[T], err error) {
	if err = v.tok.checkAlive("Split"); err != nil {
		return View[T]{}, View[T]{}, err
	}
	if mid < 0 || mid > v.length {
		return View[T]{}, View[T]{}, newError("Split", OutOfBounds,
			fmt.Sprintf("mid=%d exceeds length=%d", mid, v.length))
	}
	var zero T
	elemSize := unsafe.Sizeof(zero)
	var rightAddr unsafe.Pointer
	if v.addr != nil {
		rightAddr = unsafe.Pointer(uintptr(v.addr) + uintptr(mid)*elemSize)
	}
	left = View[T]{addr: v.addr, length: mid, tok: v.tok}
	right = View[T]{addr: rightAddr, length: v.length - mid, tok: v.tok}
	return left, right, nil
}
