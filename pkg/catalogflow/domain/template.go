package domain

import "database/sql"

type ProcessTemplate struct {
	ID      int64         `db:"id"`
	Code    string        `db:"code"`
	Name    string        `db:"name"`
	ClassID sql.NullInt64 `db:"class_id"`
}

// TemplateState binds a state to a template, optionally as the initial state
// and optionally guarded by a formula.
type TemplateState struct {
	TemplateID      int64         `db:"template_id"`
	StateID         int64         `db:"state_id"`
	Initial         bool          `db:"is_initial"`
	GuardFunctionID sql.NullInt64 `db:"guard_function_id"`
}

// DecisionMapEntry is one edge of a template's state machine.
type DecisionMapEntry struct {
	TemplateID  int64 `db:"template_id"`
	StateID     int64 `db:"state_id"`
	DecisionID  int64 `db:"decision_id"`
	NextStateID int64 `db:"next_state_id"`
}
