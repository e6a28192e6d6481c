package domain

// AppendRequest advances a process by one step. ExpectedPosition is the
// position of the step the caller observed as current.
type AppendRequest struct {
	ProcessID        int64
	ExpectedPosition int
	DecisionID       int64
	ActorID          int64
	NextStateID      int64
}
