package vm

import (
	"fmt"
	"os"

	"github.com/Luminiscental/clearvm/pkg/bytecode"
	"github.com/Luminiscental/clearvm/pkg/value"
)

func init() {
	registerHandler(bytecode.Clock, opClock)
	registerHandler(bytecode.Print, opPrint)
	registerHandler(bytecode.Pop, opPop)
	registerHandler(bytecode.Squash, opSquash)
}

func opClock(vm *VM, offset int) *VMError {
	return vm.stack.push(value.MakeNum(vm.elapsed().Seconds()), offset)
}

func opPrint(vm *VM, offset int) *VMError {
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	if v.Tag() != value.Obj {
		return newError(KindType, offset, "PRINT requires a string, got %s", v.Tag())
	}
	s, ok := v.AsObj().(*value.String)
	if !ok {
		return newError(KindType, offset, "PRINT requires a string, got %s", v.AsObj().Kind())
	}

	out := vm.out
	if out == nil {
		out = os.Stdout
	}
	if _, err := fmt.Fprintln(out, string(s.Bytes)); err != nil {
		return newError(KindIO, offset, "PRINT failed: %v", err)
	}
	return nil
}

func opPop(vm *VM, offset int) *VMError {
	v, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	closeOne(v)
	return nil
}

func opSquash(vm *VM, offset int) *VMError {
	top, perr := vm.stack.pop(offset)
	if perr != nil {
		return perr
	}
	return vm.stack.overwriteTop(top, offset)
}
