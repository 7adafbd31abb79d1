package process

// Notes:
// - Real kill behavior is exercised by the browser integration tests; unit
//   tests cannot safely terminate real processes.
// - PID 0 and negative PIDs are guarded, so they are tested as no-ops.

import "testing"

// ---------------------------------------------------------------------------
// TestKillProcessGroup - PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	// Non-existent PID: the signal fails and the error is ignored.
	KillProcessGroup(999999999)
}

func TestKillProcessGroup_NonPositivePID(t *testing.T) {
	t.Parallel()

	// A launcher that never started reports PID 0; signalling -0 would kill
	// the test's own process group.
	for _, pid := range []int{0, -1} {
		KillProcessGroup(pid)
	}
}
