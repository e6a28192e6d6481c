package models

type ProductClassApi struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId,omitempty"`
}

type ParameterApi struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type ProductApi struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	ClassID int64  `json:"classId"`
}

type ParameterValueApi struct {
	ParameterID int64   `json:"parameterId"`
	Value       *string `json:"value"`
	Note        *string `json:"note,omitempty"`
}

type ConstraintApi struct {
	MinVal        *string `json:"minVal,omitempty"`
	MaxVal        *string `json:"maxVal,omitempty"`
	Pattern       *string `json:"pattern,omitempty"`
	AllowedValues *string `json:"allowedValues,omitempty"`
}
