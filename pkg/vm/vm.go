// Package vm implements ClearVM's dispatch loop: the stack/frame
// machinery, the global table, the upvalue manager, and the opcode
// handler table that together execute a loaded bytecode.Image.
package vm

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/Luminiscental/clearvm/pkg/bytecode"
	"github.com/Luminiscental/clearvm/pkg/intern"
	"github.com/Luminiscental/clearvm/pkg/value"
)

// MaxGlobals is the fixed capacity of the global table (spec §3, §5).
const MaxGlobals = 256

// MaxJumpOffset bounds JUMP/JUMP_IF_FALSE/LOOP immediates (spec §5); since
// they're encoded as a single u8 this is implied by the wire format, but
// it's named here so handlers have one place to cite it in RANGE errors.
const MaxJumpOffset = 255

// State is the per-instruction state machine spec §4.6 names.
type State uint8

const (
	Running State = iota
	HaltedOK
	HaltedErr
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case HaltedOK:
		return "HALTED_OK"
	case HaltedErr:
		return "HALTED_ERR"
	default:
		return "UNKNOWN"
	}
}

type global struct {
	present bool
	value   value.Value
}

// VM is a single ClearVM instance. Per spec §5 it is strictly
// single-threaded and owns the stack, globals, heap, intern table, and
// constants for its entire lifetime — nothing here is safe to share
// across goroutines.
type VM struct {
	stack   stack
	fp      int
	ip      int
	globals [MaxGlobals]global

	heap    *value.Heap
	interns *intern.Table

	constants []value.Value
	code      []byte

	returnReg value.Value

	state State

	out   io.Writer
	start time.Time
	clock func() time.Duration

	log zerolog.Logger
}

// Option configures a VM at construction. Tests use WithOutput to capture
// PRINT's output; WithClock makes CLOCK deterministic.
type Option func(*VM)

// WithOutput redirects PRINT's output away from the default of
// os.Stdout. cmd/clearvm and tests are the only callers that need this.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) { vm.out = w }
}

// WithLogger installs a structured logger for dispatch tracing, off by
// default (zerolog.Nop()).
func WithLogger(log zerolog.Logger) Option {
	return func(vm *VM) { vm.log = log }
}

// WithClock overrides CLOCK's time source, used by tests that need
// reproducible output; elapsed is measured from VM construction.
func WithClock(elapsed func() time.Duration) Option {
	return func(vm *VM) { vm.clock = elapsed }
}

// New constructs a VM ready to Load a bytecode image. It owns a fresh
// heap and intern table for its entire lifetime (spec §5).
func New(opts ...Option) *VM {
	vm := &VM{
		heap:    value.NewHeap(),
		interns: &intern.Table{},
		start:   time.Now(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Load parses buf's constant pool and positions the instruction pointer
// at the first instruction, transitioning the VM into RUNNING (spec §4.6:
// "Initial state after loading constants and positioning ip is RUNNING").
func (vm *VM) Load(buf []byte) error {
	img, err := bytecode.Load(buf, vm.heap, vm.interns)
	if err != nil {
		vm.state = HaltedErr
		return &VMError{Kind: KindDecode, Offset: 0, Message: err.Error()}
	}
	if len(img.Constants) > bytecode.MaxConstants {
		vm.state = HaltedErr
		return newError(KindRange, 0, "constant pool exceeds %d entries", bytecode.MaxConstants)
	}
	vm.constants = img.Constants
	vm.code = img.Code
	vm.ip = 0
	vm.fp = 0
	vm.stack.sp = 0
	vm.state = Running
	return nil
}

// State reports the VM's current state-machine position (spec §4.6).
func (vm *VM) State() State { return vm.state }

// Heap exposes the VM's object arena, into which the loader's string
// constants and the allocating opcode handlers (STR, STR_CAT, STRUCT,
// REF_LOCAL) place their objects.
func (vm *VM) Heap() *value.Heap { return vm.heap }

// Execute loads buf and runs it to completion, returning the terminal
// error (nil on success) — the shape the embedding CLI actually calls
// (spec §6: init/execute/teardown collapsed into two Go calls since Go
// has no separate teardown step to expose).
func Execute(buf []byte, opts ...Option) error {
	vm := New(opts...)
	if err := vm.Load(buf); err != nil {
		return err
	}
	return vm.Run()
}
