package partition

import (
	"fmt"

	"modernc.org/token"
)

// NameMismatchError reports an end marker naming a different function than
// the start marker of the block it closes.
type NameMismatchError struct {
	Expected string
	Found    string
	Pos      token.Position
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("%s: fn name end start not match: expected %q, found %q", e.Pos, e.Expected, e.Found)
}

// UnterminatedBlockError reports a block still open at end of document.
type UnterminatedBlockError struct {
	Name string
	Pos  token.Position
}

func (e *UnterminatedBlockError) Error() string {
	return fmt.Sprintf("%s: block %q has no end marker", e.Pos, e.Name)
}
