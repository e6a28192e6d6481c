package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RealZimboGuy/catalogflow/internal/engine"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// AdminGroup is granted access to every state of the built-in templates.
const AdminGroup = "catalog-admins"

const (
	TemplateCatalogInclusion int64 = 1
	TemplateCardChange       int64 = 2
)

type template struct {
	domain.ProcessTemplate
	initial int64
	states  []int64
	edges   [][3]int64 // from, decision, to
}

var states = []domain.State{
	{ID: 1, Code: "draft", Name: "Draft"},
	{ID: 2, Code: "moderation", Name: "On moderation"},
	{ID: 3, Code: "published", Name: "Published"},
	{ID: 4, Code: "corrections", Name: "Corrections requested"},
	{ID: 5, Code: "rejected", Name: "Rejected"},
	{ID: 6, Code: "paused", Name: "Paused"},
	{ID: 7, Code: "cancelled", Name: "Cancelled"},
	{ID: 8, Code: "archived", Name: "Archived"},
	{ID: 9, Code: "select_product", Name: "Product selection"},
	{ID: 10, Code: "create_copy", Name: "Creating a copy"},
	{ID: 11, Code: "edit_params", Name: "Editing parameters"},
	{ID: 12, Code: "mod_approval", Name: "Moderator approval"},
	{ID: 13, Code: "mgr_approval", Name: "Manager approval"},
	{ID: 14, Code: "change_permission", Name: "Change permission"},
	{ID: 15, Code: "apply_changes", Name: "Applying changes"},
	{ID: 16, Code: "postponed", Name: "Change postponed"},
	{ID: 17, Code: "completed", Name: "Completed"},
}

var decisions = []domain.Decision{
	{ID: 1, Code: "submit", Name: "Submit for moderation"},
	{ID: 2, Code: "approve", Name: "Approve"},
	{ID: 3, Code: "reject", Name: "Reject"},
	{ID: 4, Code: "request_changes", Name: "Request changes"},
	{ID: 5, Code: "apply_changes", Name: "Apply changes"},
	{ID: 6, Code: "pause", Name: "Pause"},
	{ID: 7, Code: "resume", Name: "Resume"},
	{ID: 8, Code: "archive", Name: "Archive"},
	{ID: 9, Code: "cancel", Name: "Cancel"},
	{ID: 10, Code: "create_copy", Name: "Create copy"},
	{ID: 11, Code: "start_edit", Name: "Start editing"},
	{ID: 12, Code: "to_moderation", Name: "Send to moderator"},
	{ID: 13, Code: "revision", Name: "Send back for revision"},
	{ID: 14, Code: "mod_approved", Name: "Approved by moderator"},
	{ID: 15, Code: "mgr_approved", Name: "Approved by manager"},
	{ID: 16, Code: "allow", Name: "Allow"},
	{ID: 17, Code: "postpone", Name: "Postpone"},
	{ID: 18, Code: "retry", Name: "Retry"},
	{ID: 19, Code: "done", Name: "Done"},
}

var templates = []template{
	{
		ProcessTemplate: domain.ProcessTemplate{ID: TemplateCatalogInclusion, Code: "catalog_inclusion", Name: "Catalog inclusion"},
		initial:         1,
		states:          []int64{1, 2, 3, 4, 5, 6, 7, 8},
		edges: [][3]int64{
			{1, 1, 2}, {1, 9, 7},
			{2, 2, 3}, {2, 3, 5}, {2, 4, 4},
			{4, 5, 1}, {4, 9, 7},
			{3, 6, 6}, {3, 8, 8},
			{6, 7, 3}, {6, 8, 8},
		},
	},
	{
		ProcessTemplate: domain.ProcessTemplate{ID: TemplateCardChange, Code: "card_change", Name: "Product card change"},
		initial:         9,
		states:          []int64{9, 10, 11, 12, 13, 14, 15, 16, 17},
		edges: [][3]int64{
			{9, 10, 10},
			{10, 11, 11},
			{11, 12, 12},
			{12, 14, 13}, {12, 13, 11},
			{13, 15, 14}, {13, 13, 11},
			{14, 16, 15}, {14, 17, 16},
			{15, 19, 17},
			{16, 18, 14},
		},
	},
}

// DecisionMapEntries returns the built-in transitions of all templates.
func DecisionMapEntries() []domain.DecisionMapEntry {
	var out []domain.DecisionMapEntry
	for _, t := range templates {
		for _, e := range t.edges {
			out = append(out, domain.DecisionMapEntry{TemplateID: t.ID, StateID: e[0], DecisionID: e[1], NextStateID: e[2]})
		}
	}
	return out
}

// MemoryDecisionMap returns the built-in transitions as an in-memory map.
func MemoryDecisionMap() *engine.MemoryDecisionMap {
	return engine.NewMemoryDecisionMap(DecisionMapEntries()...)
}

func States() []domain.State { return append([]domain.State(nil), states...) }

func Decisions() []domain.Decision { return append([]domain.Decision(nil), decisions...) }

type DictionaryStore interface {
	SaveState(ctx context.Context, s *domain.State) error
	SaveDecision(ctx context.Context, d *domain.Decision) error
}

type TemplateStore interface {
	SaveTemplate(ctx context.Context, t *domain.ProcessTemplate) error
	TemplateStates(ctx context.Context, templateID int64) ([]domain.TemplateState, error)
	SaveTemplateState(ctx context.Context, ts domain.TemplateState) error
	SaveDecisionMapEntry(ctx context.Context, e domain.DecisionMapEntry) error
}

type AccessStore interface {
	FindGroupByName(ctx context.Context, name string) (*domain.ActorGroup, error)
	SaveGroup(ctx context.Context, name string) (*domain.ActorGroup, error)
	GrantAccess(ctx context.Context, groupID, templateID, stateID int64) error
}

// Apply writes the built-in dictionaries, templates and decision map. It is
// safe to run repeatedly. States or decisions already used by a trajectory
// are left as they are.
func Apply(ctx context.Context, dict DictionaryStore, tmpl TemplateStore, access AccessStore) error {
	for _, s := range states {
		if err := dict.SaveState(ctx, &s); err != nil && !errors.Is(err, domain.ErrReferentialIntegrity) {
			return fmt.Errorf("seed state %s: %w", s.Code, err)
		}
	}
	for _, d := range decisions {
		if err := dict.SaveDecision(ctx, &d); err != nil && !errors.Is(err, domain.ErrReferentialIntegrity) {
			return fmt.Errorf("seed decision %s: %w", d.Code, err)
		}
	}

	group, err := access.FindGroupByName(ctx, AdminGroup)
	if errors.Is(err, domain.ErrNotFound) {
		group, err = access.SaveGroup(ctx, AdminGroup)
	}
	if err != nil {
		return fmt.Errorf("seed group %s: %w", AdminGroup, err)
	}

	for _, t := range templates {
		pt := t.ProcessTemplate
		if err := tmpl.SaveTemplate(ctx, &pt); err != nil {
			return fmt.Errorf("seed template %s: %w", t.Code, err)
		}
		existing, err := tmpl.TemplateStates(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("seed template %s: %w", t.Code, err)
		}
		guards := make(map[int64]domain.TemplateState, len(existing))
		for _, ts := range existing {
			guards[ts.StateID] = ts
		}
		for _, stateID := range t.states {
			// guard bindings are configured at runtime and survive a reseed
			ts := domain.TemplateState{TemplateID: t.ID, StateID: stateID, Initial: stateID == t.initial}
			ts.GuardFunctionID = guards[stateID].GuardFunctionID
			if err := tmpl.SaveTemplateState(ctx, ts); err != nil {
				return fmt.Errorf("seed template %s state %d: %w", t.Code, stateID, err)
			}
			if err := access.GrantAccess(ctx, group.ID, t.ID, stateID); err != nil {
				return fmt.Errorf("seed access to state %d: %w", stateID, err)
			}
		}
		for _, e := range t.edges {
			entry := domain.DecisionMapEntry{TemplateID: t.ID, StateID: e[0], DecisionID: e[1], NextStateID: e[2]}
			if err := tmpl.SaveDecisionMapEntry(ctx, entry); err != nil {
				return fmt.Errorf("seed transition %d_%d: %w", e[0], e[1], err)
			}
		}
	}
	slog.InfoContext(ctx, "Seed applied", "states", len(states), "decisions", len(decisions), "templates", len(templates))
	return nil
}
