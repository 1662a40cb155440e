// Package cost is a running ledger of spend attributed to each backend
// provider, used to bias cost-aware provider selection.
//
// The tracker keeps monotonically increasing per-currency totals and a
// rolling hourly window of recent spend per provider. It performs no
// currency conversion: callers must report comparable units if spend is to
// be compared across providers.
package cost
