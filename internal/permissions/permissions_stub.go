//go:build !darwin

package permissions

// checkAccessibility always grants on platforms without an accessibility
// gate; missing device access surfaces as a hook start error instead.
func checkAccessibility(prompt bool) bool {
	return true
}
