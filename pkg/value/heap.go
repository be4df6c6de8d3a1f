package value

// Heap is an arena owning every Object a VM allocates over its lifetime.
// The source VM threads allocated objects onto an intrusive linked list
// (Obj.next) purely so it can walk and free them on teardown; Go already
// garbage-collects, so Heap keeps the same bookkeeping only where ClearVM
// semantics actually depend on it — string interning identity — and
// otherwise exists to give every allocation site a single, auditable
// point of entry (spec.md §9: "an arena owning all objects of the VM is
// simpler, with a uniform release on teardown").
type Heap struct {
	objects []Object
}

// NewHeap returns an empty arena.
func NewHeap() *Heap {
	return &Heap{}
}

// Alloc registers obj with the heap and returns it, so call sites read as
// h.Alloc(&value.Struct{...}).
func (h *Heap) Alloc(obj Object) Object {
	h.objects = append(h.objects, obj)
	return obj
}

// Len reports how many objects have been allocated over the heap's
// lifetime, exposed for the end-to-end tests that assert on allocation
// counts (spec §8 round-trip/idempotence checks around string interning).
func (h *Heap) Len() int {
	return len(h.objects)
}

// Reset drops every tracked object, used between independent test runs
// that share a single VM's heap.
func (h *Heap) Reset() {
	h.objects = h.objects[:0]
}
