package value

// StringPool canonicalizes equal byte sequences to a single string
// object, so string equality reduces to pointer identity. The pool
// owns every interned string. Keys are the interned objects; the
// stored values are unused.
type StringPool struct {
	table Table
}

// NewStringPool creates an empty pool
func NewStringPool() *StringPool {
	return &StringPool{}
}

// Intern returns the canonical string object for the given bytes,
// creating and registering one if none exists.
func (p *StringPool) Intern(b []byte) *StringObj {
	hash := HashBytes(b)
	if s := p.table.FindString(b, hash); s != nil {
		return s
	}

	s := &StringObj{bytes: append([]byte(nil), b...), hash: hash}
	p.table.Set(s, NilValue())
	return s
}

// InternString interns the bytes of a Go string
func (p *StringPool) InternString(s string) *StringObj {
	return p.Intern([]byte(s))
}

// Concat returns the canonical string object for the concatenation of
// two strings
func (p *StringPool) Concat(a, b *StringObj) *StringObj {
	joined := make([]byte, 0, len(a.bytes)+len(b.bytes))
	joined = append(joined, a.bytes...)
	joined = append(joined, b.bytes...)

	hash := HashBytes(joined)
	if s := p.table.FindString(joined, hash); s != nil {
		return s
	}

	s := &StringObj{bytes: joined, hash: hash}
	p.table.Set(s, NilValue())
	return s
}

// Len returns the number of interned strings
func (p *StringPool) Len() int {
	return p.table.Count()
}
