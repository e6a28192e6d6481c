package domain

// State is a named point in a workflow.
type State struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Decision is an action an actor can apply to a process.
type Decision struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// GuardFunction names a DNF formula. Template states reference it by ID.
type GuardFunction struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
