package vm

import "github.com/Luminiscental/clearvm/pkg/value"

// internString returns the canonical *value.String for s, allocating on
// the heap only the first time these bytes are seen. Every opcode that
// manufactures a new string at run time (STR conversion, STR_CAT) goes
// through this so runtime-produced strings participate in the same
// pointer-identity guarantee as constant-pool strings (spec §4.2, §8
// "string interning identity").
func (vm *VM) internString(s string) *value.String {
	bytes := []byte(s)
	return vm.interns.Intern(bytes, func(b []byte, hash uint32) *value.String {
		cp := make([]byte, len(b))
		copy(cp, b)
		str := &value.String{Bytes: cp, Hash: hash}
		vm.heap.Alloc(str)
		return str
	})
}
