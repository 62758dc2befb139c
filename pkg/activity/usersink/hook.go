package usersink

import (
	"context"
	"time"

	"github.com/goliatone/go-scoped/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts scope lifecycle events to a go-users ActivitySink. Scope events
// carry no user identity of their own, so the actor and tenant attributed to
// the records are configured on the hook.
type Hook struct {
	Sink     usertypes.ActivitySink
	ActorID  uuid.UUID
	TenantID uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    h.ActorID,
		UserID:     h.ActorID,
		TenantID:   h.TenantID,
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       cloneMap(normalized.Metadata),
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	if normalized.Category != "" {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data["category"] = normalized.Category
	}
	if normalized.GlobalSeq != 0 {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data["global_seq"] = normalized.GlobalSeq
		record.Data["depth"] = normalized.Depth
	}

	return h.Sink.Log(ctx, record)
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
