package contentline

import "fmt"

// LexError reports a logical line that could not be split into a name,
// parameters and a value. Line is the physical line the logical line started
// on, or zero when the line was parsed on its own. Start and End delimit the
// offending byte range within the unfolded line.
type LexError struct {
	Line  int
	Start int
	End   int
	Msg   string
}

func (e *LexError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, columns %d-%d: %s", e.Line, e.Start, e.End, e.Msg)
	}
	return fmt.Sprintf("columns %d-%d: %s", e.Start, e.End, e.Msg)
}

// ContainerError reports unbalanced BEGIN/END lines.
type ContainerError struct {
	Line int
	Msg  string
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}
