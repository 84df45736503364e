package normalize

import "padron/internal/query/models"

// Candidate keys per logical owner field, in resolution order.
var (
	ownerNameKeys     = []string{"nombre", "nombres", "propietario", "razon_social", "razonSocial", "companyName"}
	ownerDocumentKeys = []string{"documento", "dni", "numero_documento", "nroDocumento", "nro_documento"}
	ownerShareKeys    = []string{"porcentaje", "participacion", "share"}
	ownerListKeys     = []string{"propietarios", "owners", "titulares"}
)

// Ownership normalizes a vehicle-registry ownership response. The owner list
// comes from the payload; vehicle details fill in from payload fields.
func Ownership(rawText string, payload models.Document) *models.Record {
	rec := &models.OwnershipRecord{
		Plate:  payload.FirstString("placa", "plate"),
		Serial: payload.FirstString("serie", "numero_serie", "vin"),
		Year:   payload.FirstString("anio", "año", "ano", "modelo_anio"),
		Make:   payload.FirstString("marca"),
		Model:  payload.FirstString("modelo"),
		Office: payload.FirstString("oficina", "oficina_registral", "sede"),
	}

	for _, doc := range payload.DocumentList(ownerListKeys...) {
		owner := models.Owner{
			Name:       doc.FirstString(ownerNameKeys...),
			DocumentID: doc.FirstString(ownerDocumentKeys...),
			Condition:  doc.FirstString("condicion", "calidad", "tipo"),
		}
		if share, ok := doc.FirstFloat(ownerShareKeys...); ok {
			owner.SharePercent = &share
		}
		if owner.Name == "" && owner.DocumentID == "" {
			continue
		}
		rec.Owners = append(rec.Owners, owner)
	}

	if ownershipEmpty(rec) {
		return nil
	}
	return &models.Record{Category: models.CategoryOwnership, Ownership: rec}
}

func ownershipEmpty(r *models.OwnershipRecord) bool {
	return len(r.Owners) == 0 && r.Plate == "" && r.Serial == "" && r.Year == "" &&
		r.Make == "" && r.Model == "" && r.Office == ""
}
