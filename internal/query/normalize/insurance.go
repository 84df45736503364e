package normalize

import "padron/internal/query/models"

// SOAT result tables carry eight columns once the header line is found:
// aseguradora, clase, uso, certificado, inicio, fin, placa, estado.
const insuranceMinCols = 8

var insuranceHeaderKeywords = []string{"aseguradora", "compañia", "compania"}

// Insurance normalizes a SOAT coverage response.
func Insurance(rawText string, payload models.Document) *models.Record {
	rec := &models.InsuranceRecord{}

	if cols, ok := findRow(rawText, insuranceHeaderKeywords, insuranceMinCols); ok {
		rec.Company = col(cols, 0)
		rec.Class = col(cols, 1)
		rec.Use = col(cols, 2)
		rec.Certificate = col(cols, 3)
		rec.Start = dateField(col(cols, 4))
		rec.End = dateField(col(cols, 5))
		rec.Plate = col(cols, 6)
		rec.Status = col(cols, 7)
	}

	// Payload fields fill whatever the table did not provide.
	if rec.Company == "" {
		rec.Company = payload.FirstString("aseguradora", "compania", "company")
	}
	if rec.Class == "" {
		rec.Class = payload.FirstString("clase", "tipo")
	}
	if rec.Use == "" {
		rec.Use = payload.FirstString("uso")
	}
	if rec.Certificate == "" {
		rec.Certificate = payload.FirstString("certificado", "poliza", "numero_poliza")
	}
	if rec.Plate == "" {
		rec.Plate = payload.FirstString("placa", "plate")
	}
	if rec.Start.IsZero() && rec.End.IsZero() {
		rec.Start, rec.End = fallbackDates(rawText)
	}
	rec.Status = inferStatus(rec.Status, payload)

	// A trailing "información actualizada al ..." line is informational but
	// callers display it verbatim when present.
	rec.UpdatedInfo = findLineContaining(rawText, "actualizada")

	if insuranceEmpty(rec) {
		return nil
	}
	return &models.Record{Category: models.CategoryInsurance, Insurance: rec}
}

func insuranceEmpty(r *models.InsuranceRecord) bool {
	return r.Company == "" && r.Class == "" && r.Use == "" && r.Certificate == "" &&
		r.Plate == "" && r.Status == "" && r.UpdatedInfo == "" &&
		r.Start.IsZero() && r.End.IsZero()
}
