package eval

import (
	"io"
	"os"
)

// stdoutWriter/stderrWriter back `println`/`eprintln` (spec.md §3 "effects
// / io"). Package-level so tests can redirect them without threading a
// writer through every call.
var (
	stdoutWriter io.Writer = os.Stdout
	stderrWriter io.Writer = os.Stderr
)
