package scoped

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("scoped: evaluator not configured")

// Query filters the open scopes across the given categories (or all
// categories when none are given) with a predicate expression evaluated per
// entry. Entries for which the predicate returns true come back in global
// open order. A predicate that yields anything but a bool fails the query.
//
// Expressions see the entry bindings (category, value, seq, local_seq,
// opened_at, id) plus now, args, and metadata.
func (r *Registry) Query(expr string, categories ...Category) ([]Entry, error) {
	return r.QueryWith(QueryContext{}, expr, categories...)
}

// QueryWith is Query with caller-supplied args and metadata made available to
// the predicate.
func (r *Registry) QueryWith(qctx QueryContext, expr string, categories ...Category) ([]Entry, error) {
	if expr == "" {
		return nil, fmt.Errorf("scoped: expression must not be empty")
	}
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	engine := evaluatorEngineName(evaluator)
	entries := r.GlobalEntries(categories...)

	start := time.Now()
	matched, queryErr := filterEntries(evaluator, engine, qctx, expr, entries)
	r.queryLogger().LogQuery(QueryLogEvent{
		Engine:   engine,
		Expr:     expr,
		Entries:  len(entries),
		Matched:  len(matched),
		Duration: time.Since(start),
		Err:      queryErr,
	})
	if queryErr != nil {
		return nil, queryErr
	}
	return matched, nil
}

func filterEntries(evaluator Evaluator, engine string, qctx QueryContext, expr string, entries []Entry) ([]Entry, error) {
	rule, err := evaluator.Compile(expr)
	if err != nil {
		return nil, wrapEvaluationError(engine, expr, "", err)
	}

	var matched []Entry
	for _, entry := range entries {
		ctx := qctx
		ctx.Entry = entry
		ctx = ctx.withDefaults()

		result, err := rule.Evaluate(ctx)
		if err != nil {
			return nil, wrapEvaluationError(engine, expr, ctx.categoryLabel(), err)
		}
		keep, ok := result.(bool)
		if !ok {
			return nil, wrapEvaluationError(engine, expr, ctx.categoryLabel(),
				fmt.Errorf("predicate must return bool, got %T", result))
		}
		if keep {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (r *Registry) queryLogger() QueryLogger {
	if r.cfg.logger != nil {
		return r.cfg.logger
	}
	return noopQueryLogger{}
}

// resolveEvaluator returns the configured evaluator, falling back to an expr
// evaluator wired with the registry's cache and functions.
func (r *Registry) resolveEvaluator() (Evaluator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.evaluator != nil {
		return r.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := r.cfg.programCache; cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := r.cfg.functions; registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	r.cfg.evaluator = defaultEvaluator
	return defaultEvaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*scoped.exprEvaluator":
		return "expr"
	case "*scoped.celEvaluator":
		return "cel"
	case "*scoped.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
