//go:build darwin

package intercept

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <stdint.h>
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>

extern CGEventRef snapclickTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

typedef struct {
    CFMachPortRef tap;
    CFRunLoopSourceRef source;
    CFRunLoopRef loop;
} tapState;

// Creates the HID-level tap on the calling thread's run loop. handle is a
// runtime/cgo.Handle handed back to the callback as refcon.
static int tapInstall(tapState *st, uintptr_t handle) {
    CGEventMask mask = CGEventMaskBit(kCGEventKeyDown);
    st->tap = CGEventTapCreate(
        kCGHIDEventTap,
        kCGHeadInsertEventTap,
        kCGEventTapOptionDefault,
        mask,
        snapclickTapCallback,
        (void *)handle
    );
    if (st->tap == NULL) {
        return 0;
    }
    st->source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, st->tap, 0);
    st->loop = (CFRunLoopRef)CFRetain(CFRunLoopGetCurrent());
    CFRunLoopAddSource(st->loop, st->source, kCFRunLoopCommonModes);
    CGEventTapEnable(st->tap, true);
    return 1;
}

static void tapRun(void) {
    CFRunLoopRun();
}

// Safe from any thread.
static void tapStop(tapState *st) {
    if (st->tap != NULL) {
        CGEventTapEnable(st->tap, false);
    }
    if (st->loop != NULL) {
        CFRunLoopStop(st->loop);
    }
}

// Called on the tap thread once its run loop has returned.
static void tapRelease(tapState *st) {
    if (st->source != NULL) {
        CFRunLoopRemoveSource(st->loop, st->source, kCFRunLoopCommonModes);
        CFRelease(st->source);
        st->source = NULL;
    }
    if (st->tap != NULL) {
        CFMachPortInvalidate(st->tap);
        CFRelease(st->tap);
        st->tap = NULL;
    }
    if (st->loop != NULL) {
        CFRelease(st->loop);
        st->loop = NULL;
    }
}

static int isKeyDown(CGEventType t) {
    return t == kCGEventKeyDown;
}

static int isTapDisabled(CGEventType t) {
    return t == kCGEventTapDisabledByTimeout || t == kCGEventTapDisabledByUserInput;
}

static int64_t eventKeycode(CGEventRef e) {
    return CGEventGetIntegerValueField(e, kCGKeyboardEventKeycode);
}

static uint64_t eventFlags(CGEventRef e) {
    return (uint64_t)CGEventGetFlags(e);
}

static CGEventRef passOrSwallow(CGEventRef e, int swallow) {
    return swallow ? NULL : e;
}
*/
import "C"

import (
	"errors"
	"runtime"
	"runtime/cgo"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/petems/snapclick/internal/hotkey"
)

// CGEventFlags modifier bits.
const (
	flagShift     = 1 << 17
	flagControl   = 1 << 18
	flagAlternate = 1 << 19
	flagCommand   = 1 << 20
)

var errTapCreate = errors.New("failed to create event tap, check Accessibility permission")

type darwinTap struct {
	mu      sync.Mutex
	running bool
	done    chan struct{}

	// stMu guards st between Stop on the caller's thread and release on
	// the tap thread.
	stMu sync.Mutex
	st   C.tapState

	handle   func(KeyEvent) bool
	disabled func()
	lost     atomic.Bool
}

// NewPlatformHook returns the CGEventTap binding. Matched events are
// swallowed before they reach any application.
func NewPlatformHook() Hook {
	return &darwinTap{}
}

func (t *darwinTap) Start(handle func(KeyEvent) bool, disabled func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return nil
	}

	t.handle = handle
	t.disabled = disabled
	t.lost.Store(false)
	t.done = make(chan struct{})

	h := cgo.NewHandle(t)
	ready := make(chan bool, 1)
	go t.run(h, ready, t.done)

	if !<-ready {
		<-t.done
		return errTapCreate
	}
	t.running = true
	return nil
}

// run owns the tap for its whole life on one locked OS thread, since the
// run loop it is attached to is per-thread.
func (t *darwinTap) run(h cgo.Handle, ready chan<- bool, done chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)
	defer h.Delete()

	t.stMu.Lock()
	ok := C.tapInstall(&t.st, C.uintptr_t(h)) == 1
	t.stMu.Unlock()

	ready <- ok
	if !ok {
		return
	}

	C.tapRun()

	t.stMu.Lock()
	C.tapRelease(&t.st)
	t.stMu.Unlock()

	if t.lost.Load() {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		t.disabled()
	}
}

func (t *darwinTap) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	done := t.done
	t.mu.Unlock()

	t.stMu.Lock()
	C.tapStop(&t.st)
	t.stMu.Unlock()
	<-done
}

//export snapclickTapCallback
func snapclickTapCallback(proxy C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	t := cgo.Handle(uintptr(refcon)).Value().(*darwinTap)

	if C.isTapDisabled(eventType) == 1 {
		// The system gave up on the tap. Leave the run loop; run reports it.
		t.lost.Store(true)
		C.CFRunLoopStop(C.CFRunLoopGetCurrent())
		return event
	}

	if C.isKeyDown(eventType) != 1 {
		return event
	}

	ev := KeyEvent{
		Code:      uint16(C.eventKeycode(event)),
		Modifiers: modifiersFromFlags(uint64(C.eventFlags(event))),
	}

	swallow := C.int(0)
	if t.handle(ev) {
		swallow = 1
	}
	return C.passOrSwallow(event, swallow)
}

func modifiersFromFlags(flags uint64) hotkey.Modifier {
	var m hotkey.Modifier
	if flags&flagCommand != 0 {
		m |= hotkey.ModCommand
	}
	if flags&flagAlternate != 0 {
		m |= hotkey.ModOption
	}
	if flags&flagControl != 0 {
		m |= hotkey.ModControl
	}
	if flags&flagShift != 0 {
		m |= hotkey.ModShift
	}
	return m
}
