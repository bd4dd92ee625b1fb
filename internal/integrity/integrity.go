// Package integrity checks that a built package carries the sources of its build.
package integrity

import "bytes"

// Marker returns the byte sequence every source of a build embeds.
func Marker(buildID string) []byte {
	return []byte("BUILD_ID: " + buildID)
}

// Verify reports whether data contains the marker of buildID.
// A false result is advisory: some encodings may strip comments.
func Verify(data []byte, buildID string) bool {
	if buildID == "" {
		return false
	}
	return bytes.Contains(data, Marker(buildID))
}
