package models

// PredicateApi carries at most one of StateID, DecisionID and ParameterID.
// None set means the always true predicate.
type PredicateApi struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	StateID     *int64 `json:"stateId,omitempty"`
	DecisionID  *int64 `json:"decisionId,omitempty"`
	ParameterID *int64 `json:"parameterId,omitempty"`
}

type FormulaRowApi struct {
	Disjunction int   `json:"disjunction"`
	Conjunction int   `json:"conjunction"`
	PredicateID int64 `json:"predicateId"`
}

type FormulaApi struct {
	FunctionID int64           `json:"functionId"`
	Rows       []FormulaRowApi `json:"rows"`
}

type EvaluateResponse struct {
	FunctionID int64  `json:"functionId"`
	ProcessID  int64  `json:"processId"`
	SubjectID  string `json:"subjectId"`
	Result     bool   `json:"result"`
}
