package vm

import "github.com/Luminiscental/clearvm/pkg/bytecode"

// handler executes one decoded instruction. offset is the byte offset of
// the opcode itself, recorded before the handler runs so error messages
// point at the failing instruction rather than wherever ip ends up after
// consuming immediates (spec §7: "the VM records... the byte offset of
// the failing instruction").
type handler func(vm *VM, offset int) *VMError

// handlers is the dispatch table spec §4.3 calls for: "uses it as index
// into a per-opcode handler table". Populated by init() in each
// opcodes_*.go file via registerHandler, grouped the way spec §4.4
// groups the opcodes themselves.
var handlers [256]handler

func registerHandler(op bytecode.Op, h handler) {
	handlers[op] = h
}

// fetchByte reads the byte at the current ip and advances it, failing
// with KindDecode if ip has run past the end of the code buffer.
func (vm *VM) fetchByte() (byte, *VMError) {
	if vm.ip < 0 || vm.ip >= len(vm.code) {
		return 0, newError(KindDecode, vm.ip, "fetch past end of buffer")
	}
	b := vm.code[vm.ip]
	vm.ip++
	return b, nil
}

// fetchOperand reads a single immediate u8, used by every opcode that
// takes exactly one operand byte.
func (vm *VM) fetchOperand(offset int) (byte, *VMError) {
	if vm.ip < 0 || vm.ip >= len(vm.code) {
		return 0, newError(KindDecode, offset, "truncated immediate operand")
	}
	b := vm.code[vm.ip]
	vm.ip++
	return b, nil
}

// Run drives the fetch-decode-execute loop to completion (spec §4.3,
// §4.6). It returns nil on HALTED_OK and the terminal *VMError on
// HALTED_ERR.
func (vm *VM) Run() error {
	for {
		if vm.ip >= len(vm.code) {
			vm.state = HaltedOK
			return nil
		}

		offset := vm.ip
		opByte, ferr := vm.fetchByte()
		if ferr != nil {
			vm.state = HaltedErr
			return ferr
		}

		op := bytecode.Op(opByte)
		if !bytecode.Valid(op) {
			vm.state = HaltedErr
			return newError(KindDecode, offset, "unknown opcode %d", opByte)
		}

		h := handlers[op]
		if h == nil {
			vm.state = HaltedErr
			return newError(KindDecode, offset, "unhandled opcode %s", op)
		}

		vm.log.Trace().Str("op", op.String()).Int("offset", offset).Int("sp", vm.stack.sp).Msg("dispatch")

		if err := h(vm, offset); err != nil {
			vm.state = HaltedErr
			return err
		}
	}
}
