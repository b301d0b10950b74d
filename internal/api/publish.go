package api

import (
	"context"

	"github.com/rs/zerolog/log"
)

// publishJSON emits a domain event on the bus when one is configured.
// Publishing is best-effort; a slow or absent broker never fails a request.
func (a *API) publishJSON(ctx context.Context, subject string, payload map[string]any) {
	if a.store.Bus == nil || subject == "" {
		return
	}
	if err := a.store.Bus.Publish(ctx, subject, payload); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("publish event")
	}
}
