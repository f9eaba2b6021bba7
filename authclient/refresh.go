package authclient

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kbukum/deskhub/httpclient"
	"github.com/kbukum/deskhub/logger"
)

const refreshKey = "refresh"

// refresh renews the credential on behalf of a request sent in epoch.
//
// Every caller that arrives while a refresh is running joins it. A caller
// whose request predates the latest settled refresh gets that refresh's
// outcome without a new call. The refresh itself ignores the callers'
// cancellation and is bounded by RefreshTimeout; a caller whose context
// ends stops waiting.
//
// Epochs only order refreshes, not time. A request that stays in flight
// longer than one access-token lifetime and then gets a 401 reuses the
// settled outcome instead of refreshing again; the retry then fails and the
// caller sees the 401.
func (c *Client) refresh(ctx context.Context, epoch uint64) error {
	ch := c.flight.DoChan(refreshKey, func() (any, error) {
		last := c.last.Load()
		if last.epoch != epoch {
			c.metrics.recordRefresh(ctx, c.role.String(), outcomeSkipped)
			return nil, last.err
		}

		c.refreshing.Store(true)
		defer c.refreshing.Store(false)

		err := c.callRefresh(ctx)
		var termErr error
		if err != nil {
			termErr = c.terminate(ctx, ReasonRefreshFailed, err)
		}
		c.last.Store(&refreshResult{epoch: last.epoch + 1, err: termErr})
		return nil, termErr
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (c *Client) callRefresh(parent context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.cfg.RefreshTimeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "authclient.refresh")
	defer span.End()
	span.SetAttributes(attribute.String("role", c.role.String()))

	c.log.Debug("Refreshing credential")
	_, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   c.cfg.RefreshPath,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		c.metrics.recordRefresh(ctx, c.role.String(), outcomeFailure)
		c.log.Warn("Credential refresh failed", logger.ErrorFields("refresh", err))
		return err
	}

	c.metrics.recordRefresh(ctx, c.role.String(), outcomeSuccess)
	c.log.Info("Credential refreshed")
	return nil
}
