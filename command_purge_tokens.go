package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// PurgeExpiredTokensMessage triggers the refresh token ledger sweep.
// Hosts schedule it out-of-band; the core never self-schedules.
type PurgeExpiredTokensMessage struct {
	Before time.Time `json:"before,omitempty"`
}

func (e PurgeExpiredTokensMessage) Type() string { return "auth.refresh_tokens.purge" }

type PurgeExpiredTokensHandler struct {
	auther *Auther
	logger Logger
}

func NewPurgeExpiredTokensHandler(auther *Auther) *PurgeExpiredTokensHandler {
	return &PurgeExpiredTokensHandler{
		auther: auther,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *PurgeExpiredTokensHandler) WithLogger(logger Logger) *PurgeExpiredTokensHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *PurgeExpiredTokensHandler) Execute(ctx context.Context, event PurgeExpiredTokensMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during refresh token purge",
		)
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	before := event.Before
	if before.IsZero() {
		before = time.Now()
	}

	count, err := h.auther.PurgeExpiredTokens(ctx, before)
	if err != nil {
		return err
	}

	h.logger.Info("purged expired refresh tokens", "count", count)
	return nil
}
