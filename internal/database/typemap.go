package database

import (
	"sort"

	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/sqltype"
)

// DecodeFunc turns a catalog type into a semantic type. fmod is the raw type
// modifier (nil when absent) and sqlType the formatted type text.
type DecodeFunc func(fmod *int32, sqlType string) (sqltype.Type, error)

// Static returns a DecodeFunc that ignores its inputs.
func Static(t sqltype.Type) DecodeFunc {
	return func(*int32, string) (sqltype.Type, error) { return t, nil }
}

// TypeRegistry collects decoding rules while a dialect initializes. It is
// not safe for concurrent use; Build freezes it into a TypeMap.
type TypeRegistry struct {
	rules   map[string]DecodeFunc
	aliases map[string]string
	oids    map[uint32]string
	err     error
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		rules:   make(map[string]DecodeFunc),
		aliases: make(map[string]string),
		oids:    make(map[uint32]string),
	}
}

// Register adds a rule under name. Registering a name twice is an error
// reported by Build.
func (r *TypeRegistry) Register(name string, fn DecodeFunc) {
	if r.taken(name) {
		r.fail(errs.Newf(errs.ErrKindInvalidInput, "type %q registered twice", name))
		return
	}
	r.rules[name] = fn
}

// Alias makes name resolve to the rule registered under target.
// Aliases of aliases are rejected by Build.
func (r *TypeRegistry) Alias(name, target string) {
	if r.taken(name) {
		r.fail(errs.Newf(errs.ErrKindInvalidInput, "type %q registered twice", name))
		return
	}
	r.aliases[name] = target
}

// BindOID records which key a raw type id resolves to.
func (r *TypeRegistry) BindOID(oid uint32, name string) {
	if prev, ok := r.oids[oid]; ok && prev != name {
		r.fail(errs.Newf(errs.ErrKindInvalidInput, "oid %d bound to both %q and %q", oid, prev, name))
		return
	}
	r.oids[oid] = name
}

func (r *TypeRegistry) taken(name string) bool {
	_, rule := r.rules[name]
	_, alias := r.aliases[name]
	return rule || alias
}

func (r *TypeRegistry) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Build validates the registry and returns the read-only map.
func (r *TypeRegistry) Build() (*TypeMap, error) {
	if r.err != nil {
		return nil, r.err
	}

	rules := make(map[string]DecodeFunc, len(r.rules)+len(r.aliases))
	for name, fn := range r.rules {
		rules[name] = fn
	}
	for name, target := range r.aliases {
		fn, ok := r.rules[target]
		if !ok {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "alias %q targets unknown type %q", name, target)
		}
		rules[name] = fn
	}

	oids := make(map[uint32]string, len(r.oids))
	for oid, name := range r.oids {
		if _, ok := rules[name]; !ok {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "oid %d bound to unknown type %q", oid, name)
		}
		oids[oid] = name
	}

	return &TypeMap{rules: rules, oids: oids}, nil
}

// TypeMap is the frozen result of a TypeRegistry. It is safe for concurrent use.
type TypeMap struct {
	rules map[string]DecodeFunc
	oids  map[uint32]string
}

// Lookup decodes a type by registered name.
func (m *TypeMap) Lookup(name string, fmod *int32, sqlType string) (sqltype.Type, error) {
	fn, ok := m.rules[name]
	if !ok {
		return sqltype.Type{}, errs.Newf(errs.ErrKindTypeDecode, "no decoding rule for type %q", name)
	}
	return fn(fmod, sqlType)
}

// LookupOID decodes a type by its raw catalog id.
func (m *TypeMap) LookupOID(oid uint32, fmod *int32, sqlType string) (sqltype.Type, error) {
	name, ok := m.oids[oid]
	if !ok {
		return sqltype.Type{}, errs.Newf(errs.ErrKindTypeDecode, "no decoding rule for type oid %d (%s)", oid, sqlType)
	}
	return m.Lookup(name, fmod, sqlType)
}

// NameOf returns the key bound to oid.
func (m *TypeMap) NameOf(oid uint32) (string, bool) {
	name, ok := m.oids[oid]
	return name, ok
}

// Keys returns every registered name, aliases included, sorted.
func (m *TypeMap) Keys() []string {
	keys := make([]string, 0, len(m.rules))
	for k := range m.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
