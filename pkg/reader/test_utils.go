// Package reader provides fixture generation shared by the write and
// verify engines' tests. It lives in a regular (non _test.go) file
// because a _test.go file's exports aren't visible outside its own
// package, and internal/writeengine and internal/verifyengine both need
// GenerateRandomBuffer to build fake image/device contents.
package reader

import "math/rand"

// GenerateRandomBuffer returns n bytes of random data, standing in for an
// image or device's contents in writeengine/verifyengine tests — neither
// engine cares about the bytes' meaning, only that source and destination
// match (or deliberately don't) afterward.
func GenerateRandomBuffer(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate random data: " + err.Error())
	}
	return b
}
