package normalize

import "padron/internal/query/models"

var (
	identityDocumentKeys = []string{"dni", "documento", "numero_documento", "numero"}
	identityNamesKeys    = []string{"nombres", "prenombres", "name", "names"}
	identityPaternalKeys = []string{"apellido_paterno", "apellidoPaterno", "ape_paterno", "paterno"}
	identityMaternalKeys = []string{"apellido_materno", "apellidoMaterno", "ape_materno", "materno"}
	identityFullNameKeys = []string{"nombre_completo", "nombreCompleto", "nombres_completos"}
	identityBirthKeys    = []string{"fecha_nacimiento", "fechaNacimiento", "nacimiento"}
)

// Identity normalizes a national-ID identity response.
func Identity(rawText string, payload models.Document) *models.Record {
	rec := &models.IdentityRecord{
		DocumentID:      payload.FirstString(identityDocumentKeys...),
		Names:           payload.FirstString(identityNamesKeys...),
		PaternalSurname: payload.FirstString(identityPaternalKeys...),
		MaternalSurname: payload.FirstString(identityMaternalKeys...),
		FullName:        payload.FirstString(identityFullNameKeys...),
		BirthDate:       payload.FirstString(identityBirthKeys...),
	}

	if identityEmpty(rec) {
		return nil
	}
	return &models.Record{Category: models.CategoryIdentity, Identity: rec}
}

func identityEmpty(r *models.IdentityRecord) bool {
	return r.DocumentID == "" && r.Names == "" && r.PaternalSurname == "" &&
		r.MaternalSurname == "" && r.FullName == "" && r.BirthDate == ""
}
