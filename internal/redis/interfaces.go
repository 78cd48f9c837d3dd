package redis

import "tripledger/internal/rates"

// Ensure concrete types implement interfaces.
var _ rates.SnapshotStore = (*RateStore)(nil)
