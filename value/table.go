package value

import "bytes"

// Hash table geometry. Capacity starts at initialCapacity and doubles
// whenever the load factor (live entries plus tombstones) would exceed
// 75%, so at least one free slot always terminates a probe chain.
const (
	initialCapacity = 8
	loadNumerator   = 3
	loadDenominator = 4
)

// An entry is in one of three states: free (nil key, nil value),
// tombstone (nil key, boolean true value), or live (non-nil key).
type entry struct {
	key   *StringObj
	value Value
}

// Table is an open-addressed hash table with linear probing, keyed by
// string object identity. Deletions leave tombstones so probe chains
// stay intact; tombstones are dropped on resize.
type Table struct {
	count   int // live entries + tombstones
	entries []entry
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{}
}

// Count returns the number of live entries plus tombstones
func (t *Table) Count() int {
	return t.count
}

// Capacity returns the current size of the entry array
func (t *Table) Capacity() int {
	return len(t.entries)
}

// findEntry locates the slot for a key within the given entry array.
// On a miss it returns the first tombstone seen along the probe chain,
// or the terminating free slot if there was none.
func findEntry(entries []entry, key *StringObj) *entry {
	index := key.hash % uint32(len(entries))
	var tombstone *entry

	for {
		e := &entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				// Free slot terminates the probe
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			// Tombstone: remember the first one and keep probing
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) % uint32(len(entries))
	}
}

// adjustCapacity grows the entry array and reinserts every live entry
// at its new natural probe location. Tombstones are dropped and the
// count recomputed from live entries only.
func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)
	count := 0

	for i := range t.entries {
		e := &t.entries[i]
		if e.key == nil {
			continue
		}
		dest := findEntry(entries, e.key)
		dest.key = e.key
		dest.value = e.value
		count++
	}

	t.entries = entries
	t.count = count
}

// Set inserts or updates a key. It returns true if the key was not
// previously present. The count grows only when a free slot is
// consumed; reusing a tombstone leaves it unchanged.
func (t *Table) Set(key *StringObj, v Value) bool {
	if (t.count+1)*loadDenominator > len(t.entries)*loadNumerator {
		capacity := len(t.entries) * 2
		if capacity < initialCapacity {
			capacity = initialCapacity
		}
		t.adjustCapacity(capacity)
	}

	e := findEntry(t.entries, key)
	isNew := e.key == nil
	if isNew && e.value.IsNil() {
		t.count++
	}

	e.key = key
	e.value = v
	return isNew
}

// Get looks up a key and returns its value
func (t *Table) Get(key *StringObj) (Value, bool) {
	if t.count == 0 {
		return NilValue(), false
	}

	e := findEntry(t.entries, key)
	if e.key == nil {
		return NilValue(), false
	}
	return e.value, true
}

// Delete removes a key, leaving a tombstone in its slot. The count is
// untouched so probe chains through the slot remain valid.
func (t *Table) Delete(key *StringObj) bool {
	if t.count == 0 {
		return false
	}

	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}

	e.key = nil
	e.value = BoolValue(true)
	return true
}

// AddAll copies every live entry from another table
func (t *Table) AddAll(src *Table) {
	for i := range src.entries {
		e := &src.entries[i]
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}

// FindString locates a key by byte content rather than identity. This
// is the interning probe: it is the only lookup that compares bytes.
func (t *Table) FindString(b []byte, hash uint32) *StringObj {
	if t.count == 0 {
		return nil
	}

	index := hash % uint32(len(t.entries))
	for {
		e := &t.entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				return nil
			}
			// Tombstone: keep probing
		} else if e.key.hash == hash && bytes.Equal(e.key.bytes, b) {
			return e.key
		}
		index = (index + 1) % uint32(len(t.entries))
	}
}
