//go:build darwin

package permissions

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Cocoa
#import <ApplicationServices/ApplicationServices.h>
#import <Cocoa/Cocoa.h>

int checkAccessibilityPermission(int prompt) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: prompt ? @YES : @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}
*/
import "C"

// checkAccessibility asks AX whether this process is trusted (needed for
// event taps and CGEventPost). With prompt set, macOS shows its dialog
// pointing at System Settings → Privacy & Security → Accessibility.
func checkAccessibility(prompt bool) bool {
	p := C.int(0)
	if prompt {
		p = 1
	}
	return C.checkAccessibilityPermission(p) == 1
}
