package value

// Thunk is a deferred top-level def value. spec.md §3 describes two states
// (Code, Evaled) but §9 Design Notes asks for an explicit InProgress marker
// to replace the source's "store Nil as a recursion guard" trick, so a
// circular self-reference during preprocessing is detectable and raises a
// precise error instead of silently reading back an accidental nil.
//
// A *Thunk is mutated in place to transition between these states; the
// evaluator resolves it directly, outside the program's evaluated-table
// lock (internal/program). This is the one place the value universe is not purely persistent, and it
// mirrors spec.md §3's own invariant: "A thunk transitions Code -> Evaled
// exactly once per program lifetime (or until hot-reload clears it)."
type ThunkState uint8

const (
	ThunkStateCode ThunkState = iota
	ThunkStateInProgress
	ThunkStateEvaled
)

type Location struct {
	Ns    string
	Def   string
	Coord []int
}

type Thunk struct {
	State    ThunkState
	Code     Value    // present in Code and InProgress states
	Location Location // present in Code and InProgress states
	Evaled   Value    // present in Evaled state
}

func (*Thunk) Kind() Kind { return KindThunk }

func NewCodeThunk(code Value, loc Location) *Thunk {
	return &Thunk{State: ThunkStateCode, Code: code, Location: loc}
}

// MarkInProgress transitions Code -> InProgress, guarding against circular
// preprocessing of the same (ns, def) (spec.md §4.5 step 2).
func (t *Thunk) MarkInProgress() {
	t.State = ThunkStateInProgress
}

// Resolve transitions (Code|InProgress) -> Evaled, memoizing v.
func (t *Thunk) Resolve(v Value) {
	t.State = ThunkStateEvaled
	t.Evaled = v
	t.Code = nil
}
