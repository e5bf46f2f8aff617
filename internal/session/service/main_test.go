package service

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that no test in this package leaks goroutines; the store
// and controller are expected to run entirely on the caller's goroutine.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
