package domain

import (
	"database/sql"
	"time"
)

type Process struct {
	ID         int64     `db:"id"`
	TemplateID int64     `db:"template_id"`
	SubjectID  string    `db:"subject_id"`
	Created    time.Time `db:"created"`
}

// TrajectoryStep is one entry of a process history. DecisionID stays null on
// the last step until the next step is appended.
type TrajectoryStep struct {
	ProcessID  int64         `db:"process_id"`
	Position   int           `db:"position"`
	StateID    int64         `db:"state_id"`
	DecisionID sql.NullInt64 `db:"decision_id"`
	ActorID    int64         `db:"actor_id"`
	DateTime   time.Time     `db:"date_time"`
}
