package values

import "fmt"

// ContractError signals a logic error inside the engine itself, such as
// nesting a set inside a set. It is raised with panic and never caused by
// the analyzed program.
type ContractError struct {
	Op  string
	Msg string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("values: %s: %s", e.Op, e.Msg)
}

func contractf(op, format string, args ...any) *ContractError {
	return &ContractError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
