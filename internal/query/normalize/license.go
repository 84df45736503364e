package normalize

import "padron/internal/query/models"

var (
	licenseNumberKeys       = []string{"numero", "numero_licencia", "licencia"}
	licenseClassKeys        = []string{"clase"}
	licenseCategoryKeys     = []string{"categoria"}
	licenseIssuedKeys       = []string{"fecha_expedicion", "expedicion", "emision"}
	licenseExpiresKeys      = []string{"fecha_vencimiento", "vencimiento", "revalidacion"}
	licenseRestrictionsKeys = []string{"restricciones", "restriccion"}
)

// License normalizes a driver-license status response.
func License(rawText string, payload models.Document) *models.Record {
	rec := &models.LicenseRecord{
		DocumentID:   payload.FirstString("dni", "documento"),
		Number:       payload.FirstString(licenseNumberKeys...),
		Class:        payload.FirstString(licenseClassKeys...),
		Category:     payload.FirstString(licenseCategoryKeys...),
		Restrictions: payload.StringList(licenseRestrictionsKeys...),
	}

	if issued := payload.FirstString(licenseIssuedKeys...); issued != "" {
		rec.Issued = dateField(issued)
	}
	if expires := payload.FirstString(licenseExpiresKeys...); expires != "" {
		rec.Expires = dateField(expires)
	}
	if rec.Issued.IsZero() && rec.Expires.IsZero() {
		rec.Issued, rec.Expires = fallbackDates(rawText)
	}
	rec.Status = inferStatus("", payload)

	if licenseEmpty(rec) {
		return nil
	}
	return &models.Record{Category: models.CategoryLicense, License: rec}
}

func licenseEmpty(r *models.LicenseRecord) bool {
	return r.Number == "" && r.Class == "" && r.Category == "" && r.Status == "" &&
		len(r.Restrictions) == 0 && r.Issued.IsZero() && r.Expires.IsZero()
}
