// Package registry holds the static table of upstream registry services. The
// table is built once at startup and read-only afterwards, so lookups are
// lock-free.
package registry

import (
	"fmt"

	"padron/internal/query/normalize"
	id "padron/pkg/domain"
)

// Descriptor describes one upstream service: where to reach it, which query
// field it expects, which entity scope it serves, and how to normalize its
// response. Normalize may be nil for services whose raw payload is passed
// through untouched.
type Descriptor struct {
	ID        id.ServiceID
	Endpoint  string
	Field     id.QueryField
	Scope     id.Scope
	Normalize normalize.Func
}

// Registry maps service ids to descriptors. Keys are unique; registration
// order is preserved for scope listings.
type Registry struct {
	services map[id.ServiceID]Descriptor
	order    []id.ServiceID
}

// New builds a registry from descriptors, rejecting duplicate ids.
func New(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{services: make(map[id.ServiceID]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if d.ID == "" {
			return nil, fmt.Errorf("service descriptor without id")
		}
		if _, exists := r.services[d.ID]; exists {
			return nil, fmt.Errorf("duplicate service id %q", d.ID)
		}
		r.services[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

// Lookup returns the descriptor for a service id. A missing id is a
// programming error on the caller's side, never a user-facing condition.
func (r *Registry) Lookup(serviceID id.ServiceID) (Descriptor, bool) {
	d, ok := r.services[serviceID]
	return d, ok
}

// ByScope returns every descriptor whose scope matches, in registration order.
func (r *Registry) ByScope(scope id.Scope) []Descriptor {
	var out []Descriptor
	for _, serviceID := range r.order {
		if d := r.services[serviceID]; d.Scope == scope {
			out = append(out, d)
		}
	}
	return out
}

// IDs returns every registered service id in registration order.
func (r *Registry) IDs() []id.ServiceID {
	return append([]id.ServiceID(nil), r.order...)
}

// Well-known service ids. The identity service doubles as the enrichment
// source for ownership records.
const (
	ServiceSOAT       id.ServiceID = "soat"
	ServiceInspection id.ServiceID = "revision"
	ServiceOwnership  id.ServiceID = "sunarp"
	ServiceIdentity   id.ServiceID = "reniec"
	ServiceLicense    id.ServiceID = "licencia"
	ServiceDebt       id.ServiceID = "deudas"
)

// Endpoints carries the configured upstream endpoint per service id.
type Endpoints map[id.ServiceID]string

// Default builds the standard six-service registry from configured endpoints.
func Default(endpoints Endpoints) (*Registry, error) {
	return New(
		Descriptor{ID: ServiceSOAT, Endpoint: endpoints[ServiceSOAT], Field: id.FieldPlate, Scope: id.ScopeVehicle, Normalize: normalize.Insurance},
		Descriptor{ID: ServiceInspection, Endpoint: endpoints[ServiceInspection], Field: id.FieldPlate, Scope: id.ScopeVehicle, Normalize: normalize.Inspection},
		Descriptor{ID: ServiceOwnership, Endpoint: endpoints[ServiceOwnership], Field: id.FieldPlate, Scope: id.ScopeVehicle, Normalize: normalize.Ownership},
		Descriptor{ID: ServiceIdentity, Endpoint: endpoints[ServiceIdentity], Field: id.FieldNationalID, Scope: id.ScopePerson, Normalize: normalize.Identity},
		Descriptor{ID: ServiceLicense, Endpoint: endpoints[ServiceLicense], Field: id.FieldNationalID, Scope: id.ScopePerson, Normalize: normalize.License},
		Descriptor{ID: ServiceDebt, Endpoint: endpoints[ServiceDebt], Field: id.FieldNationalID, Scope: id.ScopePerson, Normalize: normalize.Debt},
	)
}
