// Package normalize turns loosely-structured upstream responses into typed
// records. Every normalizer is a pure function over the raw response text and
// the decoded payload: no I/O, no panics, and partial extraction always beats
// rejection. A normalizer returns nil only when nothing usable was found.
//
// Field names vary per upstream deployment, so readers resolve an ordered
// list of candidate keys (see models.Document) instead of branching per
// shape. Candidate lists are declared data so each source can be extended
// without touching extraction logic.
package normalize

import "padron/internal/query/models"

// Func is the normalizer contract attached to a service descriptor.
type Func func(rawText string, payload models.Document) *models.Record

// Status strings as the registries print them. When an upstream omits the
// textual status, a boolean validity flag decides between the two; an
// explicit textual status always wins over the inferred one.
const (
	StatusValid   = "Vigente"
	StatusExpired = "Vencido"
)

// inferStatus applies the status precedence: explicit text, then the boolean
// validity flag, then empty.
func inferStatus(explicit string, payload models.Document) string {
	if explicit != "" {
		return explicit
	}
	if s := payload.FirstString("estado", "situacion", "status"); s != "" {
		return s
	}
	if valid, ok := payload.FirstBool("vigente", "valido", "activo"); ok {
		if valid {
			return StatusValid
		}
		return StatusExpired
	}
	return ""
}
