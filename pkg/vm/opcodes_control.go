package vm

import (
	"github.com/Luminiscental/clearvm/pkg/bytecode"
	"github.com/Luminiscental/clearvm/pkg/value"
)

func init() {
	registerHandler(bytecode.Jump, opJump)
	registerHandler(bytecode.JumpIfFalse, opJumpIfFalse)
	registerHandler(bytecode.Loop, opLoop)
	registerHandler(bytecode.Function, opFunction)
	registerHandler(bytecode.Call, opCall)
	registerHandler(bytecode.LoadIP, opLoadIP)
	registerHandler(bytecode.LoadFP, opLoadFP)
	registerHandler(bytecode.SetReturn, opSetReturn)
	registerHandler(bytecode.PushReturn, opPushReturn)
}

// jumpTo validates and installs a new ip, enforcing the `start ≤ ip ≤
// end` invariant (spec §3) for every control-flow opcode.
func (vm *VM) jumpTo(newIP, offset int) *VMError {
	if newIP < 0 || newIP > len(vm.code) {
		return newError(KindRange, offset, "jump target %d out of range [0, %d]", newIP, len(vm.code))
	}
	vm.ip = newIP
	return nil
}

func opJump(vm *VM, offset int) *VMError {
	off, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	return vm.jumpTo(vm.ip+int(off), offset)
}

func opJumpIfFalse(vm *VM, offset int) *VMError {
	off, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	cond, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	if cond.Tag() != value.Bool {
		return newError(KindType, offset, "JUMP_IF_FALSE requires bool, got %s", cond.Tag())
	}
	if !cond.AsBool() {
		return vm.jumpTo(vm.ip+int(off), offset)
	}
	return nil
}

func opLoop(vm *VM, offset int) *VMError {
	off, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	return vm.jumpTo(vm.ip-int(off), offset)
}

func opFunction(vm *VM, offset int) *VMError {
	off, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	after := vm.ip
	if perr := vm.stack.push(value.MakeIP(after), offset); perr != nil {
		return perr
	}
	return vm.jumpTo(after+int(off), offset)
}

func opCall(vm *VM, offset int) *VMError {
	n, err := vm.fetchOperand(offset)
	if err != nil {
		return err
	}
	callee, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	if callee.Tag() != value.IP {
		return newError(KindType, offset, "CALL requires an ip value, got %s", callee.Tag())
	}

	args := make([]value.Value, n)
	for i := int(n) - 1; i >= 0; i-- {
		a, aerr := vm.stack.pop(offset)
		if aerr != nil {
			return aerr
		}
		args[i] = a
	}

	if perr := vm.stack.push(value.MakeIP(vm.ip), offset); perr != nil {
		return perr
	}
	if perr := vm.stack.push(value.MakeFP(vm.fp), offset); perr != nil {
		return perr
	}

	vm.fp = vm.stack.sp
	for _, a := range args {
		if perr := vm.stack.push(a, offset); perr != nil {
			return perr
		}
	}

	return vm.jumpTo(callee.AsIP(), offset)
}

func opLoadIP(vm *VM, offset int) *VMError {
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	if v.Tag() != value.IP {
		return newError(KindType, offset, "LOAD_IP requires an ip value, got %s", v.Tag())
	}
	return vm.jumpTo(v.AsIP(), offset)
}

func opLoadFP(vm *VM, offset int) *VMError {
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	if v.Tag() != value.FP {
		return newError(KindType, offset, "LOAD_FP requires an fp value, got %s", v.Tag())
	}
	vm.fp = v.AsFP()
	return nil
}

func opSetReturn(vm *VM, offset int) *VMError {
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	vm.returnReg = v
	return nil
}

func opPushReturn(vm *VM, offset int) *VMError {
	return vm.stack.push(vm.returnReg, offset)
}
