package normalize

import "padron/internal/query/models"

var (
	debtTotalKeys  = []string{"total", "deuda_total", "monto_total", "deudaTotal"}
	debtListKeys   = []string{"deudas", "obligaciones", "registros"}
	debtEntityKeys = []string{"entidad", "acreedor", "empresa"}
	debtAmountKeys = []string{"monto", "importe", "saldo"}
)

// Debt normalizes a debt-registry summary response.
func Debt(rawText string, payload models.Document) *models.Record {
	rec := &models.DebtRecord{
		DocumentID: payload.FirstString("documento", "dni"),
	}

	if total, ok := payload.FirstFloat(debtTotalKeys...); ok {
		rec.Total = &total
	}

	for _, doc := range payload.DocumentList(debtListKeys...) {
		item := models.DebtItem{
			Entity: doc.FirstString(debtEntityKeys...),
			Status: doc.FirstString("estado", "situacion"),
		}
		if amount, ok := doc.FirstFloat(debtAmountKeys...); ok {
			item.Amount = amount
		}
		if item.Entity == "" && item.Amount == 0 && item.Status == "" {
			continue
		}
		rec.Items = append(rec.Items, item)
	}

	// Total is derivable when the upstream only lists individual entries.
	if rec.Total == nil && len(rec.Items) > 0 {
		var sum float64
		for _, item := range rec.Items {
			sum += item.Amount
		}
		rec.Total = &sum
	}

	if rec.Total == nil && len(rec.Items) == 0 && rec.DocumentID == "" {
		return nil
	}
	return &models.Record{Category: models.CategoryDebt, Debt: rec}
}
