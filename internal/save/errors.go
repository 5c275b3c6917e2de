package save

import "fmt"

// ReinterpretError reports a save file that fails to parse as the
// binary container format, i.e. a corrupt or foreign file.
type ReinterpretError struct {
	Reason string
}

func (e *ReinterpretError) Error() string {
	return fmt.Sprintf("save: %s", e.Reason)
}

// NotAllGeneratedError is returned by SaveToFile when some chunk in
// the array hasn't finished generation yet.
type NotAllGeneratedError struct {
	Count int
}

func (e *NotAllGeneratedError) Error() string {
	return fmt.Sprintf("save: %d chunk(s) not yet generated", e.Count)
}
