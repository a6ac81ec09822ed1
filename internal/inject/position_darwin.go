//go:build darwin

package inject

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

// Reads the cursor location from a null event; fails when no event can be
// created (no window server session).
int currentLocation(double *x, double *y) {
    CGEventRef event = CGEventCreate(NULL);
    if (event == NULL) {
        return 0;
    }
    CGPoint loc = CGEventGetLocation(event);
    CFRelease(event);
    *x = loc.x;
    *y = loc.y;
    return 1;
}
*/
import "C"

func platformPosition() (Point, bool) {
	var x, y C.double
	if C.currentLocation(&x, &y) == 0 {
		return Point{}, false
	}
	return Point{X: int(x), Y: int(y)}, true
}
