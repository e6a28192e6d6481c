package engine

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

type transitionKey struct {
	templateID, stateID, decisionID int64
}

type stateKey struct {
	templateID, stateID int64
}

// MemoryDecisionMap is an in-memory DecisionMap and GuardBindings.
type MemoryDecisionMap struct {
	mu     sync.RWMutex
	edges  map[transitionKey]int64
	guards map[stateKey]int64
}

func NewMemoryDecisionMap(entries ...domain.DecisionMapEntry) *MemoryDecisionMap {
	m := &MemoryDecisionMap{
		edges:  make(map[transitionKey]int64),
		guards: make(map[stateKey]int64),
	}
	for _, e := range entries {
		m.Add(e)
	}
	return m
}

// Add registers or replaces one edge.
func (m *MemoryDecisionMap) Add(e domain.DecisionMapEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[transitionKey{e.TemplateID, e.StateID, e.DecisionID}] = e.NextStateID
}

// Bind guards a template state with a formula.
func (m *MemoryDecisionMap) Bind(templateID, stateID, functionID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guards[stateKey{templateID, stateID}] = functionID
}

func (m *MemoryDecisionMap) NextState(_ context.Context, templateID, stateID, decisionID int64) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	next, ok := m.edges[transitionKey{templateID, stateID, decisionID}]
	return next, ok, nil
}

func (m *MemoryDecisionMap) DecisionsFrom(_ context.Context, templateID, stateID int64) ([]domain.DecisionMapEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.DecisionMapEntry
	for k, next := range m.edges {
		if k.templateID == templateID && k.stateID == stateID {
			out = append(out, domain.DecisionMapEntry{
				TemplateID:  k.templateID,
				StateID:     k.stateID,
				DecisionID:  k.decisionID,
				NextStateID: next,
			})
		}
	}
	slices.SortFunc(out, func(a, b domain.DecisionMapEntry) int {
		return cmp.Compare(a.DecisionID, b.DecisionID)
	})
	return out, nil
}

func (m *MemoryDecisionMap) GuardFor(_ context.Context, templateID, stateID int64) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.guards[stateKey{templateID, stateID}]
	return id, ok, nil
}
