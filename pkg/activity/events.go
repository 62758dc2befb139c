package activity

import (
	"strings"
	"time"
)

// ScopeEventInput describes the common fields for scope lifecycle events.
type ScopeEventInput struct {
	ScopeID    string
	Category   string
	Channel    string
	GlobalSeq  uint64
	LocalSeq   int
	Depth      int
	Value      any
	Err        error
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildScopeOpenedEvent constructs a normalized event for a scope push.
func BuildScopeOpenedEvent(input ScopeEventInput) Event {
	return buildScopeEvent(VerbScopeOpened, input)
}

// BuildScopeClosedEvent constructs a normalized event for a scope pop.
func BuildScopeClosedEvent(input ScopeEventInput) Event {
	return buildScopeEvent(VerbScopeClosed, input)
}

// BuildScopeMisuseEvent constructs a normalized event for a rejected close.
func BuildScopeMisuseEvent(input ScopeEventInput) Event {
	return buildScopeEvent(VerbScopeMisuse, input)
}

func buildScopeEvent(verb string, input ScopeEventInput) Event {
	metadata := cloneMap(input.Metadata)
	metadata = ensureMetadata(metadata)
	metadata["local_seq"] = input.LocalSeq
	if input.Value != nil {
		metadata["value"] = input.Value
	}
	if input.Err != nil {
		metadata["error"] = input.Err.Error()
	}

	objectID := strings.TrimSpace(input.ScopeID)
	if objectID == "" {
		objectID = "scope"
	}

	return Event{
		Verb:       verb,
		ObjectType: "scope",
		ObjectID:   objectID,
		Category:   strings.TrimSpace(input.Category),
		Channel:    strings.TrimSpace(input.Channel),
		GlobalSeq:  input.GlobalSeq,
		Depth:      input.Depth,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
