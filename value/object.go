package value

// ObjectKind identifies the kind of a heap object
type ObjectKind int

const (
	ObjString ObjectKind = iota
)

var objectKindNames = map[ObjectKind]string{
	ObjString: "string",
}

func (k ObjectKind) String() string {
	if name, ok := objectKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Object is a heap-allocated runtime object referenced by Values
type Object interface {
	Kind() ObjectKind
	EqualTo(other Object) bool
	String() string
}

// StringObj is a heap string with its 32-bit FNV-1a hash computed at
// construction. The object owns its byte storage.
type StringObj struct {
	bytes []byte
	hash  uint32
}

// NewStringObj creates a string object from a copy of the given bytes
func NewStringObj(b []byte) *StringObj {
	stored := make([]byte, len(b))
	copy(stored, b)
	return &StringObj{bytes: stored, hash: HashBytes(stored)}
}

// ConcatStringObj creates a string object holding the concatenation of
// two existing strings
func ConcatStringObj(a, b *StringObj) *StringObj {
	stored := make([]byte, 0, len(a.bytes)+len(b.bytes))
	stored = append(stored, a.bytes...)
	stored = append(stored, b.bytes...)
	return &StringObj{bytes: stored, hash: HashBytes(stored)}
}

// Kind returns ObjString
func (s *StringObj) Kind() ObjectKind {
	return ObjString
}

// Len returns the byte length of the string
func (s *StringObj) Len() int {
	return len(s.bytes)
}

// Bytes returns the string's byte storage. Callers must not modify it.
func (s *StringObj) Bytes() []byte {
	return s.bytes
}

// Hash returns the precomputed FNV-1a hash
func (s *StringObj) Hash() uint32 {
	return s.hash
}

// EqualTo compares by identity first, then byte content. Interned
// strings always compare equal by the identity path.
func (s *StringObj) EqualTo(other Object) bool {
	if s == other {
		return true
	}
	o, ok := other.(*StringObj)
	if !ok {
		return false
	}
	if s.hash != o.hash || len(s.bytes) != len(o.bytes) {
		return false
	}
	for i := range s.bytes {
		if s.bytes[i] != o.bytes[i] {
			return false
		}
	}
	return true
}

func (s *StringObj) String() string {
	return string(s.bytes)
}
