package state

import "fmt"

// EditState is which entity, if any, has its inline editor open. Only one
// value is held at a time, so opening an editor closes any other.
type EditState interface {
	isEditState()
}

type Idle struct{}

type EditingCategory struct{ ID int64 }

type EditingTask struct{ ID int64 }

func (Idle) isEditState()            {}
func (EditingCategory) isEditState() {}
func (EditingTask) isEditState()     {}

func (Idle) String() string              { return "idle" }
func (e EditingCategory) String() string { return fmt.Sprintf("editing category %d", e.ID) }
func (e EditingTask) String() string     { return fmt.Sprintf("editing task %d", e.ID) }

// DanglingPolicy decides what happens to tasks whose category was deleted.
type DanglingPolicy int

const (
	// KeepDangling leaves the tasks untouched; their category id no longer
	// matches any known category.
	KeepDangling DanglingPolicy = iota
	// CascadeDelete drops the tasks locally, as the service does.
	CascadeDelete
	// Uncategorize points the tasks at the Uncategorized placeholder.
	Uncategorize
)

// Uncategorized is the placeholder ref used by the Uncategorize policy.
var Uncategorized = struct {
	ID   int64
	Name string
}{0, "Uncategorized"}

var danglingNames = map[DanglingPolicy]string{
	KeepDangling:  "keep",
	CascadeDelete: "cascade",
	Uncategorize:  "uncategorize",
}

func (p DanglingPolicy) String() string {
	if s, ok := danglingNames[p]; ok {
		return s
	}
	return fmt.Sprintf("DanglingPolicy(%d)", int(p))
}

func ParseDanglingPolicy(s string) (DanglingPolicy, error) {
	for p, name := range danglingNames {
		if name == s {
			return p, nil
		}
	}
	return KeepDangling, fmt.Errorf("unknown dangling policy %q (want keep, cascade or uncategorize)", s)
}
