package billing

// MayProceed is the credit gate: a query may hit the network only when the
// account is unmetered (nil credits) or still holds credits. Evaluated
// synchronously before any transport attempt; a blocked attempt is not a
// billable event and must never reach the ledger.
func MayProceed(snapshot *UsageSnapshot) bool {
	if snapshot == nil {
		return false
	}
	return snapshot.CreditsRemaining == nil || *snapshot.CreditsRemaining > 0
}
