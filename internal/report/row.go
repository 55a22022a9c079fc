package report

// Row is a flat mapping of column name to value that remembers insertion
// order. Setting an existing key replaces its value in place.
type Row struct {
	keys []string
	vals map[string]Value
}

// NewRow returns an empty Row.
func NewRow() *Row {
	return &Row{vals: make(map[string]Value)}
}

// RowOf builds a Row from fields, in order.
func RowOf(fields ...Field) *Row {
	r := NewRow()
	r.Merge(fields)
	return r
}

// Set stores v under key. A key seen before keeps its position.
func (r *Row) Set(key string, v Value) {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Merge sets every field of each section in order; later fields win.
func (r *Row) Merge(sections ...Section) {
	for _, sec := range sections {
		for _, f := range sec {
			r.Set(f.Key, f.Value)
		}
	}
}

// Keys returns the column names in insertion order.
func (r *Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns in r.
func (r *Row) Len() int { return len(r.keys) }

// Fields returns the row as an ordered Section.
func (r *Row) Fields() Section {
	out := make(Section, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, Field{Key: k, Value: r.vals[k]})
	}
	return out
}
