package models

type TemplateApi struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	ClassID *int64 `json:"classId,omitempty"`
}

type TemplateStateApi struct {
	StateID         int64  `json:"stateId"`
	Initial         bool   `json:"initial"`
	GuardFunctionID *int64 `json:"guardFunctionId"`
}

type DecisionMapEntryApi struct {
	StateID     int64 `json:"stateId"`
	DecisionID  int64 `json:"decisionId"`
	NextStateID int64 `json:"nextStateId"`
}
