package vm

import "time"

// elapsed returns the value CLOCK pushes. Go's standard library has no
// portable process-CPU-time read (spec §4.4 asks for "process-CPU-
// seconds"); SPEC_FULL.md §5 resolves this by using wall-clock time since
// VM construction as the documented stand-in, overridable via WithClock
// for deterministic tests.
func (vm *VM) elapsed() time.Duration {
	if vm.clock != nil {
		return vm.clock()
	}
	return time.Since(vm.start)
}
