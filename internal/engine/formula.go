package engine

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RealZimboGuy/catalogflow/internal/metrics"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// FormulaEvaluator evaluates guard formulas in disjunctive normal form: OR
// over disjunction groups, AND over the predicates of a group.
type FormulaEvaluator struct {
	DNF        DNFRepo
	Predicates predicateChecker
	// Parallel evaluates disjunction groups concurrently.
	Parallel bool
	Metrics  *metrics.Metrics
}

func NewFormulaEvaluator(dnf DNFRepo, predicates *PredicateEvaluator, parallel bool, m *metrics.Metrics) *FormulaEvaluator {
	return &FormulaEvaluator{
		DNF:        dnf,
		Predicates: predicates,
		Parallel:   parallel,
		Metrics:    m,
	}
}

type conjunct struct {
	index       int
	predicateID int64
}

type disjunct struct {
	group     int
	conjuncts []conjunct
}

func (f *FormulaEvaluator) EvaluateFormula(ctx context.Context, formulaID, processID int64, subjectID string) (bool, error) {
	start := time.Now()
	ok, err := f.evaluate(ctx, formulaID, processID, subjectID)

	result := strconv.FormatBool(ok)
	if err != nil {
		result = "error"
	}
	f.Metrics.RecordGuard(result, time.Since(start))
	slog.DebugContext(ctx, "guard evaluated",
		"formula_id", formulaID, "process_id", processID, "result", result)
	return ok, err
}

func (f *FormulaEvaluator) evaluate(ctx context.Context, formulaID, processID int64, subjectID string) (bool, error) {
	rows, err := f.DNF.FindFormulaRows(ctx, formulaID)
	if err != nil {
		return false, fmt.Errorf("load formula %d: %w", formulaID, err)
	}
	if len(rows) == 0 {
		return true, nil
	}

	groups := groupRows(rows)
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		if !slices.Contains(ids, r.PredicateID) {
			ids = append(ids, r.PredicateID)
		}
	}
	preds, err := f.DNF.FindPredicatesByIDs(ctx, ids)
	if err != nil {
		return false, fmt.Errorf("load predicates of formula %d: %w", formulaID, err)
	}

	if f.Parallel && len(groups) > 1 {
		return f.evaluateParallel(ctx, groups, preds, processID, subjectID)
	}
	for _, g := range groups {
		ok, err := f.evaluateGroup(ctx, g, preds, processID, subjectID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *FormulaEvaluator) evaluateParallel(ctx context.Context, groups []disjunct, preds map[int64]domain.Predicate, processID int64, subjectID string) (bool, error) {
	results := make([]bool, len(groups))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, g := range groups {
		eg.Go(func() error {
			ok, err := f.evaluateGroup(egCtx, g, preds, processID, subjectID)
			results[i] = ok
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return false, err
	}
	return slices.Contains(results, true), nil
}

// evaluateGroup ANDs the conjuncts of one group. A conjunct whose predicate
// no longer exists is false.
func (f *FormulaEvaluator) evaluateGroup(ctx context.Context, g disjunct, preds map[int64]domain.Predicate, processID int64, subjectID string) (bool, error) {
	for _, c := range g.conjuncts {
		p, found := preds[c.predicateID]
		if !found {
			slog.WarnContext(ctx, "formula references missing predicate",
				"predicate_id", c.predicateID, "group", g.group)
			return false, nil
		}
		ok, err := f.Predicates.Evaluate(ctx, p, processID, subjectID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// groupRows orders groups by id and conjuncts by index.
func groupRows(rows []domain.FormulaRow) []disjunct {
	byGroup := make(map[int]*disjunct)
	var order []int
	for _, r := range rows {
		d, ok := byGroup[r.Disjunction]
		if !ok {
			d = &disjunct{group: r.Disjunction}
			byGroup[r.Disjunction] = d
			order = append(order, r.Disjunction)
		}
		d.conjuncts = append(d.conjuncts, conjunct{index: r.Conjunction, predicateID: r.PredicateID})
	}
	slices.Sort(order)

	groups := make([]disjunct, 0, len(order))
	for _, id := range order {
		d := byGroup[id]
		slices.SortStableFunc(d.conjuncts, func(a, b conjunct) int {
			return cmp.Or(cmp.Compare(a.index, b.index), cmp.Compare(a.predicateID, b.predicateID))
		})
		groups = append(groups, *d)
	}
	return groups
}
