package controllers

import (
	"database/sql"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/models"
)

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func mapProcess(p domain.Process, current *domain.TrajectoryStep) models.ProcessApiResponse {
	out := models.ProcessApiResponse{
		ID:         p.ID,
		TemplateID: p.TemplateID,
		SubjectID:  p.SubjectID,
		Created:    p.Created,
	}
	if current != nil {
		stateID := current.StateID
		out.CurrentStateID = &stateID
		out.Position = current.Position
	}
	return out
}

func mapStep(s domain.TrajectoryStep) models.TrajectoryStepApi {
	return models.TrajectoryStepApi{
		Position:   s.Position,
		StateID:    s.StateID,
		DecisionID: int64Ptr(s.DecisionID),
		ActorID:    s.ActorID,
		DateTime:   s.DateTime,
	}
}

func mapDecisionMap(entries []domain.DecisionMapEntry) []models.DecisionMapEntryApi {
	out := make([]models.DecisionMapEntryApi, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.DecisionMapEntryApi{StateID: e.StateID, DecisionID: e.DecisionID, NextStateID: e.NextStateID})
	}
	return out
}

func mapPredicate(p domain.Predicate) models.PredicateApi {
	row := p.Row()
	return models.PredicateApi{
		ID:          p.ID,
		Kind:        p.Kind.String(),
		StateID:     int64Ptr(row.StateID),
		DecisionID:  int64Ptr(row.DecisionID),
		ParameterID: int64Ptr(row.ParameterID),
	}
}

// predicateFromApi rejects payloads naming more than one discriminator.
func predicateFromApi(p models.PredicateApi) (domain.Predicate, error) {
	row := domain.PredicateRow{
		ID:          p.ID,
		StateID:     nullInt64(p.StateID),
		DecisionID:  nullInt64(p.DecisionID),
		ParameterID: nullInt64(p.ParameterID),
	}
	return row.Predicate()
}

func mapTemplate(t domain.ProcessTemplate) models.TemplateApi {
	return models.TemplateApi{ID: t.ID, Code: t.Code, Name: t.Name, ClassID: int64Ptr(t.ClassID)}
}

func mapTemplateState(ts domain.TemplateState) models.TemplateStateApi {
	return models.TemplateStateApi{StateID: ts.StateID, Initial: ts.Initial, GuardFunctionID: int64Ptr(ts.GuardFunctionID)}
}

func mapClass(c domain.ProductClass) models.ProductClassApi {
	return models.ProductClassApi{ID: c.ID, Code: c.Code, Name: c.Name, ParentID: int64Ptr(c.ParentID)}
}

func mapParameter(p domain.Parameter) models.ParameterApi {
	return models.ParameterApi{ID: p.ID, Code: p.Code, Name: p.Name, Type: string(p.Type)}
}

func mapValue(v domain.ParameterValue) models.ParameterValueApi {
	return models.ParameterValueApi{ParameterID: v.ParameterID, Value: stringPtr(v.Val), Note: stringPtr(v.Note)}
}
