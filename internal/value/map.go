package value

// Map is a persistent hash-trie map (spec.md §3).
type Map struct {
	root *trieNode
}

func NewMap() Map { return Map{} }

func (Map) Kind() Kind { return KindMap }

func (m Map) Count() int { return trieCount(m.root) }

func (m Map) Get(key Value) (Value, bool) {
	return trieLookup(m.root, HashOf(key), 0, key, Equal)
}

func (m Map) Assoc(key, val Value) Map {
	return Map{root: trieInsert(m.root, HashOf(key), 0, key, val, Equal)}
}

// Dissoc removes a key. See hashtrie.go's doc comment: this rebuilds the
// trie from the filtered entry set rather than shrinking nodes in place.
func (m Map) Dissoc(key Value) Map {
	out := NewMap()
	m.Each(func(k, v Value) {
		if !Equal(k, key) {
			out = out.Assoc(k, v)
		}
	})
	return out
}

func (m Map) Each(f func(key, val Value)) {
	trieEach(m.root, f)
}

func (m Map) Keys() []Value {
	out := make([]Value, 0, m.Count())
	m.Each(func(k, _ Value) { out = append(out, k) })
	return out
}

func (m Map) Vals() []Value {
	out := make([]Value, 0, m.Count())
	m.Each(func(_, v Value) { out = append(out, v) })
	return out
}

func (m Map) Merge(other Map) Map {
	out := m
	other.Each(func(k, v Value) { out = out.Assoc(k, v) })
	return out
}

func MapFromPairs(pairs ...Value) Map {
	m := NewMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m = m.Assoc(pairs[i], pairs[i+1])
	}
	return m
}
