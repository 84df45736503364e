package normalize

import "padron/internal/query/models"

// Inspection tables carry at least five columns once a row is found:
// placa, certificado, empresa, inicio, fin, and optionally resultado.
const inspectionMinCols = 5

var inspectionHeaderKeywords = []string{"placa", "certificado"}

// Inspection normalizes a technical inspection response.
func Inspection(rawText string, payload models.Document) *models.Record {
	rec := &models.InspectionRecord{}

	if cols, ok := findRow(rawText, inspectionHeaderKeywords, inspectionMinCols); ok {
		rec.Plate = col(cols, 0)
		rec.Certificate = col(cols, 1)
		rec.Company = col(cols, 2)
		rec.Start = dateField(col(cols, 3))
		rec.End = dateField(col(cols, 4))
		rec.Result = col(cols, 5)
	}

	if rec.Plate == "" {
		rec.Plate = payload.FirstString("placa", "plate")
	}
	if rec.Certificate == "" {
		rec.Certificate = payload.FirstString("certificado", "numero_certificado", "nroCertificado")
	}
	if rec.Company == "" {
		rec.Company = payload.FirstString("empresa", "planta", "centro")
	}
	if rec.Result == "" {
		rec.Result = payload.FirstString("resultado")
	}
	if rec.Start.IsZero() && rec.End.IsZero() {
		rec.Start, rec.End = fallbackDates(rawText)
	}
	rec.Status = inferStatus("", payload)

	if inspectionEmpty(rec) {
		return nil
	}
	return &models.Record{Category: models.CategoryInspection, Inspection: rec}
}

func inspectionEmpty(r *models.InspectionRecord) bool {
	return r.Plate == "" && r.Certificate == "" && r.Company == "" && r.Result == "" &&
		r.Status == "" && r.Start.IsZero() && r.End.IsZero()
}
