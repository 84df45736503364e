// Package models holds the normalized record types produced by the response
// normalizers and the per-service query state tracked by the state store.
package models

import "time"

// Category tags which service family produced a normalized record.
type Category string

const (
	CategoryInsurance  Category = "insurance"
	CategoryInspection Category = "inspection"
	CategoryOwnership  Category = "ownership"
	CategoryLicense    Category = "license"
	CategoryIdentity   Category = "identity"
	CategoryDebt       Category = "debt"
)

// Record is the tagged union of normalized upstream results. Exactly one of
// the variant pointers is set, matching Category. Absent fields inside a
// variant stay zero-valued; normalizers never fabricate data.
type Record struct {
	Category   Category          `json:"category"`
	Insurance  *InsuranceRecord  `json:"insurance,omitempty"`
	Inspection *InspectionRecord `json:"inspection,omitempty"`
	Ownership  *OwnershipRecord  `json:"ownership,omitempty"`
	License    *LicenseRecord    `json:"license,omitempty"`
	Identity   *IdentityRecord   `json:"identity,omitempty"`
	Debt       *DebtRecord       `json:"debt,omitempty"`
}

// DateField keeps an upstream date in its original display form plus a
// best-effort parsed form. Unparsable dates keep the display string only.
type DateField struct {
	Display string     `json:"display"`
	Parsed  *time.Time `json:"parsed,omitempty"`
}

// IsZero reports whether the field carries no date at all.
func (d DateField) IsZero() bool { return d.Display == "" }

// InsuranceRecord is the normalized SOAT coverage result.
type InsuranceRecord struct {
	Company     string    `json:"aseguradora,omitempty"`
	Class       string    `json:"clase,omitempty"`
	Use         string    `json:"uso,omitempty"`
	Start       DateField `json:"inicio,omitempty"`
	End         DateField `json:"fin,omitempty"`
	Certificate string    `json:"certificado,omitempty"`
	Plate       string    `json:"placa,omitempty"`
	Status      string    `json:"estado,omitempty"`
	UpdatedInfo string    `json:"info_actualizada,omitempty"`
}

// InspectionRecord is the normalized technical inspection result.
type InspectionRecord struct {
	Plate       string    `json:"placa,omitempty"`
	Certificate string    `json:"certificado,omitempty"`
	Company     string    `json:"empresa,omitempty"`
	Result      string    `json:"resultado,omitempty"`
	Start       DateField `json:"inicio,omitempty"`
	End         DateField `json:"fin,omitempty"`
	Status      string    `json:"estado,omitempty"`
}

// Owner is one registered owner inside an ownership record. Identity is
// populated post-hoc by the enricher and stays nil until then.
type Owner struct {
	Name         string          `json:"nombre,omitempty"`
	DocumentID   string          `json:"documento,omitempty"`
	SharePercent *float64        `json:"porcentaje,omitempty"`
	Condition    string          `json:"condicion,omitempty"`
	Identity     *IdentityRecord `json:"identidad,omitempty"`
}

// OwnershipRecord is the normalized vehicle-registry ownership result.
type OwnershipRecord struct {
	Plate  string  `json:"placa,omitempty"`
	Serial string  `json:"serie,omitempty"`
	Year   string  `json:"anio,omitempty"`
	Make   string  `json:"marca,omitempty"`
	Model  string  `json:"modelo,omitempty"`
	Office string  `json:"oficina,omitempty"`
	Owners []Owner `json:"propietarios,omitempty"`
}

// LicenseRecord is the normalized driver-license status result.
type LicenseRecord struct {
	DocumentID   string    `json:"documento,omitempty"`
	Number       string    `json:"numero,omitempty"`
	Class        string    `json:"clase,omitempty"`
	Category     string    `json:"categoria,omitempty"`
	Issued       DateField `json:"expedicion,omitempty"`
	Expires      DateField `json:"vencimiento,omitempty"`
	Status       string    `json:"estado,omitempty"`
	Restrictions []string  `json:"restricciones,omitempty"`
}

// IdentityRecord is the normalized national-ID identity result.
type IdentityRecord struct {
	DocumentID      string `json:"documento,omitempty"`
	Names           string `json:"nombres,omitempty"`
	PaternalSurname string `json:"apellido_paterno,omitempty"`
	MaternalSurname string `json:"apellido_materno,omitempty"`
	FullName        string `json:"nombre_completo,omitempty"`
	BirthDate       string `json:"fecha_nacimiento,omitempty"`
}

// ComposedName joins names and surnames, skipping absent parts.
func (r *IdentityRecord) ComposedName() string {
	if r.FullName != "" {
		return r.FullName
	}
	name := r.Names
	for _, part := range []string{r.PaternalSurname, r.MaternalSurname} {
		if part == "" {
			continue
		}
		if name == "" {
			name = part
		} else {
			name += " " + part
		}
	}
	return name
}

// DebtItem is one entry in a debt-registry summary.
type DebtItem struct {
	Entity string  `json:"entidad,omitempty"`
	Amount float64 `json:"monto,omitempty"`
	Status string  `json:"estado,omitempty"`
}

// DebtRecord is the normalized debt-registry summary result.
type DebtRecord struct {
	DocumentID string     `json:"documento,omitempty"`
	Total      *float64   `json:"total,omitempty"`
	Items      []DebtItem `json:"deudas,omitempty"`
}

// QueryState is the per-service-id state tracked by the state store.
// Loading true implies Error empty; Record and Raw keep the last settled
// result until a new issue replaces them.
type QueryState struct {
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	RawBody   string    `json:"-"`
	Payload   Document  `json:"-"`
	Record    *Record   `json:"record,omitempty"`
	LastValue string    `json:"last_value,omitempty"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
}

// Settled reports whether the state holds a completed outcome (success or
// error) rather than idle or in-flight.
func (s QueryState) Settled() bool {
	return !s.Loading && (s.Error != "" || !s.FetchedAt.IsZero())
}
