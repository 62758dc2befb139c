package scoped

import (
	"time"

	"github.com/goliatone/go-scoped/pkg/activity"
	"github.com/google/uuid"
)

// Category identifies a class of scoped values tracked independently. Each
// category owns its own stack of open scopes inside a Registry; categories
// never observe each other except through the global views.
type Category string

// Entry records one open scope. Entries are immutable once created; the
// registry hands out copies, never references into its own stacks.
type Entry struct {
	// ID uniquely identifies the scope for its whole lifetime.
	ID uuid.UUID
	// Category is the stack the entry belongs to.
	Category Category
	// Value is the payload the scope activates.
	Value any
	// GlobalSeq is strictly increasing across all categories of the
	// tracker that issued it and is never reused.
	GlobalSeq uint64
	// LocalSeq is the entry's position within its category stack at open
	// time, counted from zero.
	LocalSeq int
	// OpenedAt records when the scope was opened.
	OpenedAt time.Time
}

// QueryContext carries inputs needed when evaluating a predicate against an
// open scope entry.
type QueryContext struct {
	Entry    Entry
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx QueryContext) withDefaultNow() QueryContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx QueryContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx QueryContext) withDefaultMaps() QueryContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx QueryContext) withDefaults() QueryContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx QueryContext) categoryLabel() string {
	if ctx.Entry.Category != "" {
		return string(ctx.Entry.Category)
	}
	return "unknown"
}

// binding exposes the entry to evaluator environments under stable names.
func (ctx QueryContext) binding() map[string]any {
	return map[string]any{
		"id":        ctx.Entry.ID.String(),
		"category":  string(ctx.Entry.Category),
		"value":     ctx.Entry.Value,
		"seq":       ctx.Entry.GlobalSeq,
		"local_seq": ctx.Entry.LocalSeq,
		"opened_at": ctx.Entry.OpenedAt,
	}
}

// Evaluator executes predicate expressions against a query context.
type Evaluator interface {
	Evaluate(ctx QueryContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable predicate program.
type CompiledRule interface {
	Evaluate(ctx QueryContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures a Registry at construction time.
type Option func(*registryConfig)

type registryConfig struct {
	tracker      *OrderTracker
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       QueryLogger
	hooks        activity.Hooks
}

func applyOptions(opts []Option) registryConfig {
	cfg := registryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures the evaluator used by Query.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *registryConfig) {
		cfg.evaluator = e
	}
}

// WithOrderTracker shares an existing tracker with the registry so sequence
// numbers stay totally ordered across several registries.
func WithOrderTracker(tracker *OrderTracker) Option {
	return func(cfg *registryConfig) {
		if tracker == nil {
			return
		}
		cfg.tracker = tracker
	}
}
