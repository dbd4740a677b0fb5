// Package campaign implements the campaign dispatch pipeline: recipient
// resolution, durable campaign records, and per-recipient delivery.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hal9000y/gmail-newsletter/internal/auth"
	"github.com/hal9000y/gmail-newsletter/internal/gservice"
	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

type credentialGate interface {
	Acquire(ctx context.Context) (auth.Credential, error)
}

type transport interface {
	Send(ctx context.Context, cred auth.Credential, msg gservice.Message) (string, error)
}

// Request is one dispatch invocation.
type Request struct {
	Draft
	ContactIDs      []int64
	FreeFormAddress string
}

// Result describes a dispatch that reached the queued state.
type Result struct {
	Campaign   storage.Campaign
	Sent       int
	MessageIDs []string
	// Failure is the error that stopped delivery, nil when all recipients were sent.
	// It wraps auth.ErrNotConnected or is a *TransportError.
	Failure error
}

// Engine runs the dispatch state machine: queued, then sent or error.
type Engine struct {
	resolver  *Resolver
	records   *Records
	gate      credentialGate
	transport transport
}

// NewEngine wires the dispatch collaborators.
func NewEngine(resolver *Resolver, records *Records, gate credentialGate, transport transport) *Engine {
	return &Engine{
		resolver:  resolver,
		records:   records,
		gate:      gate,
		transport: transport,
	}
}

// Dispatch validates req, persists a queued campaign, sends to every resolved
// recipient in order, and finalizes the campaign status.
//
// A returned error means the attempt was rejected or storage failed; a
// *ValidationError or a failure to queue leaves nothing persisted. Delivery
// failures are not returned as errors: they are reported in Result.Failure and
// in the campaign status. Delivery stops at the first failure. Cancelling ctx
// after the campaign is queued does not stop delivery.
func (e *Engine) Dispatch(ctx context.Context, req Request) (Result, error) {
	if err := req.Draft.validate(); err != nil {
		return Result{}, err
	}

	recipients, err := e.resolver.Resolve(ctx, req.ContactIDs, req.FreeFormAddress)
	if err != nil {
		return Result{}, err
	}
	if len(recipients) == 0 {
		return Result{}, &ValidationError{Reason: "no recipients selected"}
	}

	c, err := e.records.CreateQueued(ctx, req.Draft, recipients)
	if err != nil {
		return Result{}, err
	}
	slog.Info("campaign queued", "campaign_id", c.ID, "recipients", len(recipients))

	// Once queued, the run is not cancellable: delivery and finalize outlive the caller.
	runCtx := context.WithoutCancel(ctx)

	res := Result{Campaign: c}
	res.Failure = e.deliver(runCtx, c, recipients, &res)

	outcome := Sent()
	if res.Failure != nil {
		outcome = Failed(res.Failure.Error())
	}

	if err := e.records.Finalize(runCtx, c.ID, outcome); err != nil {
		slog.Error("campaign finalize failed", "campaign_id", c.ID, "status", outcome.Status(), "err", err)
		return res, err
	}
	res.Campaign.Status = outcome.Status()

	if res.Failure != nil {
		slog.Warn("campaign failed", "campaign_id", c.ID, "sent", res.Sent, "err", res.Failure)
	} else {
		slog.Info("campaign sent", "campaign_id", c.ID, "sent", res.Sent)
	}

	return res, nil
}

func (e *Engine) deliver(ctx context.Context, c storage.Campaign, recipients []string, res *Result) error {
	for _, to := range recipients {
		cred, err := e.gate.Acquire(ctx)
		if err != nil {
			if !errors.Is(err, auth.ErrNotConnected) {
				return fmt.Errorf("%w: %w", auth.ErrNotConnected, err)
			}
			return err
		}

		id, err := e.transport.Send(ctx, cred, gservice.Message{
			To:       to,
			Subject:  c.Subject,
			HTML:     c.HTMLBody,
			FromName: c.FromName,
		})
		if err != nil {
			return &TransportError{Recipient: to, Err: err}
		}

		slog.Debug("campaign message sent", "campaign_id", c.ID, "message_id", id)
		res.Sent++
		res.MessageIDs = append(res.MessageIDs, id)
	}

	return nil
}
