package models

import "time"

// CreateProcessRequest is the payload for starting a process.
type CreateProcessRequest struct {
	TemplateID int64  `json:"templateId"`
	SubjectID  string `json:"subjectId"`
}

type CreateProcessResponse struct {
	ID int64 `json:"id"`
}

// ProcessApiResponse represents a process together with its current step.
type ProcessApiResponse struct {
	ID             int64     `json:"id"`
	TemplateID     int64     `json:"templateId"`
	SubjectID      string    `json:"subjectId"`
	Created        time.Time `json:"created"`
	CurrentStateID *int64    `json:"currentStateId,omitempty"`
	Position       int       `json:"position,omitempty"`
}

type TrajectoryStepApi struct {
	Position   int       `json:"position"`
	StateID    int64     `json:"stateId"`
	DecisionID *int64    `json:"decisionId"`
	ActorID    int64     `json:"actorId"`
	DateTime   time.Time `json:"dateTime"`
}

type DecideRequest struct {
	DecisionID int64 `json:"decisionId"`
}

type AuthorizeResponse struct {
	Allowed     bool   `json:"allowed"`
	NextStateID int64  `json:"nextStateId,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type AccessResponse struct {
	HasAccess bool   `json:"hasAccess"`
	Reason    string `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type OkResponse struct {
	OK bool `json:"ok"`
}
