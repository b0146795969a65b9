package credentials

import "time"

// NewMemoryLedgerAt exposes the clock seam to tests.
func NewMemoryLedgerAt(ttl time.Duration, now func() time.Time) Ledger {
	return newMemoryLedger(ttl, now)
}
