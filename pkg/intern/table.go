// Package intern implements ClearVM's string interning table: an
// open-addressed hash table, keyed on raw byte content, that guarantees at
// most one *value.String object exists per distinct byte sequence for the
// lifetime of a VM. This is what lets EQUAL treat string comparison as
// pointer comparison (spec §4.2, §8 "interning pointer identity").
//
// The algorithm is carried over from ClearVM's original table.c:
// FNV-1a hashing, three-state entries (empty/full/tombstone), linear
// probing that reuses the first tombstone seen, and a 0.75 max load
// factor triggering a doubling rehash from a floor capacity of 8.
package intern

import (
	"hash/fnv"

	"github.com/Luminiscental/clearvm/pkg/value"
)

const maxLoad = 0.75
const minCapacity = 8

type entryState uint8

const (
	stateEmpty entryState = iota
	stateFull
	stateTombstone
)

type entry struct {
	hash  uint32
	key   []byte
	value *value.String
	state entryState
}

// Table is the open-addressed intern table. The zero value is ready to
// use, matching initTable's "count = 0, capacity = 0, entries = NULL"
// lazy-allocation idiom.
type Table struct {
	entries  []entry
	count    int
	capacity int
}

// Hash computes the FNV-1a 32-bit hash spec.md §4.2 names explicitly.
func Hash(bytes []byte) uint32 {
	h := fnv.New32a()
	h.Write(bytes) //nolint:errcheck // hash.Hash.Write never errors
	return h.Sum32()
}

func isAvailable(e *entry) bool {
	return e.state == stateEmpty || e.state == stateTombstone
}

// findEntry returns the slot key should occupy: an existing match, the
// first tombstone seen along the probe sequence, or the terminating empty
// slot if no tombstone was seen. Mirrors table.c's findEntry exactly,
// including probing past tombstones to confirm there's no existing match
// further along the chain.
func findEntry(entries []entry, capacity int, hash uint32, key []byte) int {
	index := int(hash % uint32(capacity))
	tombstone := -1

	for {
		e := &entries[index]
		switch {
		case e.state == stateEmpty:
			if tombstone != -1 {
				return tombstone
			}
			return index
		case e.state == stateTombstone:
			if tombstone == -1 {
				tombstone = index
			}
		case e.hash == hash && string(e.key) == string(key):
			return index
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)

	t.count = 0
	for i := range t.entries {
		old := &t.entries[i]
		if isAvailable(old) {
			continue
		}
		dest := findEntry(entries, capacity, old.hash, old.key)
		entries[dest] = entry{hash: old.hash, key: old.key, value: old.value, state: stateFull}
		t.count++
	}

	t.entries = entries
	t.capacity = capacity
}

// Get looks up key (already hashed by the caller via Hash) and reports
// whether an entry exists.
func (t *Table) Get(hash uint32, key []byte) (*value.String, bool) {
	if t.capacity == 0 {
		return nil, false
	}
	idx := findEntry(t.entries, t.capacity, hash, key)
	e := &t.entries[idx]
	if isAvailable(e) {
		return nil, false
	}
	return e.value, true
}

// Set inserts or overwrites the entry for key, growing the table first if
// the insertion would exceed the 0.75 load factor. Reports whether this
// was a new key (matching tableSet's isNewKey return).
func (t *Table) Set(hash uint32, key []byte, v *value.String) bool {
	if float64(t.count+1) > float64(t.capacity)*maxLoad {
		capacity := growCapacity(t.capacity)
		t.adjustCapacity(capacity)
	}

	idx := findEntry(t.entries, t.capacity, hash, key)
	e := &t.entries[idx]

	isNewKey := e.state != stateFull
	if e.state == stateEmpty {
		t.count++
	}

	e.hash = hash
	e.key = key
	e.value = v
	e.state = stateFull

	return isNewKey
}

// Delete tombstones the entry for key, if present.
func (t *Table) Delete(hash uint32, key []byte) bool {
	if t.count == 0 {
		return false
	}
	idx := findEntry(t.entries, t.capacity, hash, key)
	e := &t.entries[idx]
	if isAvailable(e) {
		return false
	}
	e.state = stateTombstone
	return true
}

// Count reports the number of non-empty slots, the figure the load-factor
// check uses. Delete does not decrement it, so tombstones stay counted
// until a growth rehash drops them.
func (t *Table) Count() int { return t.count }

// Capacity reports the current backing array size, 0 before first growth.
func (t *Table) Capacity() int { return t.capacity }

func growCapacity(capacity int) int {
	if capacity < minCapacity {
		return minCapacity
	}
	return capacity * 2
}

// Intern returns the canonical *value.String for bytes, allocating and
// registering a new one through alloc only on first sight. alloc builds
// the *value.String from the bytes and their hash (callers register it
// with their heap there), so the table never touches pkg/value.Heap
// directly and stays a pure hash-table data structure.
func (t *Table) Intern(bytes []byte, alloc func([]byte, uint32) *value.String) *value.String {
	hash := Hash(bytes)
	if existing, ok := t.Get(hash, bytes); ok {
		return existing
	}
	s := alloc(bytes, hash)
	t.Set(hash, s.Bytes, s)
	return s
}
