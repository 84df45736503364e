// Package enrich augments vehicle-ownership records with identity details
// from the national-ID service. Enrichment is additive: it fills the Identity
// sub-field of each owner and never reorders, removes, or overrides
// authoritative ownership data.
package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"padron/internal/query/models"
	"padron/internal/registry"
	"padron/internal/transport/upstream"
	id "padron/pkg/domain"
)

type Enricher struct {
	registry  *registry.Registry
	transport upstream.Client
	identity  id.ServiceID
	logger    *slog.Logger
}

type Option func(*Enricher)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// WithIdentityService overrides the service id used for identity lookups.
func WithIdentityService(serviceID id.ServiceID) Option {
	return func(e *Enricher) {
		e.identity = serviceID
	}
}

func New(reg *registry.Registry, transport upstream.Client, opts ...Option) (*Enricher, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}

	e := &Enricher{
		registry:  reg,
		transport: transport,
		identity:  registry.ServiceIdentity,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Enrich looks up identity details for every owner with a usable document
// identifier. Lookups run concurrently and independently: one owner's
// failure leaves that owner unchanged and never fails the batch. Owners
// without an extractable national ID pass through untouched, and when the
// identity service is not registered the whole call is a no-op.
func (e *Enricher) Enrich(ctx context.Context, rec *models.OwnershipRecord) *models.OwnershipRecord {
	if rec == nil || len(rec.Owners) == 0 {
		return rec
	}

	desc, ok := e.registry.Lookup(e.identity)
	if !ok {
		return rec
	}

	g := new(errgroup.Group)
	for i := range rec.Owners {
		owner := &rec.Owners[i]
		nationalID, usable := id.ExtractNationalID(owner.DocumentID)
		if !usable {
			continue
		}

		g.Go(func() error {
			identity, err := e.lookup(ctx, desc, nationalID)
			if err != nil {
				if e.logger != nil {
					e.logger.DebugContext(ctx, "owner identity lookup failed",
						"document_id", nationalID,
						"error", err,
					)
				}
				// Partial failure tolerated: this owner stays unchanged.
				return nil
			}

			owner.Identity = identity
			// Identity data is additive: the registry's owner name stays
			// authoritative when both sources disagree.
			if owner.Name == "" {
				owner.Name = identity.ComposedName()
			}
			return nil
		})
	}
	_ = g.Wait()

	return rec
}

func (e *Enricher) lookup(ctx context.Context, desc registry.Descriptor, nationalID id.NationalID) (*models.IdentityRecord, error) {
	resp, err := e.transport.Post(ctx, desc.Endpoint, desc.Field, nationalID.String())
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	normalize := desc.Normalize
	if normalize == nil {
		return nil, fmt.Errorf("identity service has no normalizer")
	}
	rec := normalize(resp.Body, resp.Payload)
	if rec == nil || rec.Identity == nil {
		return nil, fmt.Errorf("identity response had no usable data")
	}
	return rec.Identity, nil
}
