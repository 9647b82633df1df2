package model

// Scope is an ordered set of bindings.
type Scope struct {
	names []string
	vals  map[string]Value
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{vals: make(map[string]Value)}
}

// Define binds name to v. Redefinition keeps the original position.
func (s *Scope) Define(name string, v Value) {
	if _, ok := s.vals[name]; !ok {
		s.names = append(s.names, name)
	}
	s.vals[name] = v
}

// Get returns the value bound to name.
func (s *Scope) Get(name string) (Value, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.vals[name]
	return v, ok
}

// Names returns the bound names in definition order.
func (s *Scope) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Module is an evaluated source file: its top-level bindings and the content
// it produced.
type Module struct {
	Name    string
	Scope   *Scope
	Content Content
}
