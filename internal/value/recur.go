package value

// Recur is the tail-call sentinel (spec.md §7: "tail calls are implemented
// via an explicit Recur value rather than stack recursion"). When fn
// application produces a Recur, the apply loop rebinds its arities' params
// to Recur.Args and restarts instead of returning, bounding stack growth to
// O(1) for self-tail-calls.
type Recur struct {
	Args []Value
}

func (Recur) Kind() Kind { return KindRecur }
