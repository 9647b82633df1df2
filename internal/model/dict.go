package model

// Dict is a dictionary that keeps its keys in insertion order.
// A nil *Dict is an empty dictionary.
type Dict struct {
	keys []string
	vals map[string]Value
}

// NewDict creates an empty dictionary.
func NewDict() *Dict {
	return &Dict{vals: make(map[string]Value)}
}

// DictOf creates a dictionary from pairs.
func DictOf(pairs ...Pair) *Dict {
	d := NewDict()
	for _, p := range pairs {
		d.Set(p.Key, p.Value)
	}
	return d
}

// Pair is a key-value pair for dictionary construction.
type Pair struct {
	Key   string
	Value Value
}

// P is shorthand for constructing a Pair.
func P(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// Set binds key to v. An existing key keeps its position.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = v
}

// Get returns the value bound to key.
func (d *Dict) Get(key string) (Value, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.keys...)
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}
