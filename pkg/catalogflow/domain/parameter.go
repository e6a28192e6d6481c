package domain

import "database/sql"

type ParameterType string

const (
	ParameterText   ParameterType = "text"
	ParameterNumber ParameterType = "number"
	ParameterBool   ParameterType = "bool"
	ParameterDate   ParameterType = "date"
)

func (t ParameterType) Valid() bool {
	switch t {
	case ParameterText, ParameterNumber, ParameterBool, ParameterDate:
		return true
	}
	return false
}

type Parameter struct {
	ID   int64         `db:"id"`
	Code string        `db:"code"`
	Name string        `db:"name"`
	Type ParameterType `db:"type"`
}

// ParameterConstraint holds the class-scoped validity limits of a parameter.
// MinVal and MaxVal are interpreted according to the parameter type.
type ParameterConstraint struct {
	ClassID       int64          `db:"class_id"`
	ParameterID   int64          `db:"parameter_id"`
	MinVal        sql.NullString `db:"min_val"`
	MaxVal        sql.NullString `db:"max_val"`
	Pattern       sql.NullString `db:"pattern"`
	AllowedValues sql.NullString `db:"allowed_values"`
}

type ParameterValue struct {
	ProductID   string         `db:"product_id"`
	ParameterID int64          `db:"parameter_id"`
	Val         sql.NullString `db:"val"`
	Note        sql.NullString `db:"note"`
}

type ProductClass struct {
	ID       int64         `db:"id"`
	Code     string        `db:"code"`
	Name     string        `db:"name"`
	ParentID sql.NullInt64 `db:"parent_id"`
}

type Product struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	ClassID int64  `db:"class_id"`
}
