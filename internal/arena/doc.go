// Package arena provides a generation-tagged slot arena.
//
// Values live in slots addressed by a Ref{Index, Gen}. Removing a value bumps
// the slot's generation, so every Ref handed out before the removal becomes
// stale and is rejected deterministically by Get and Remove, even after the
// slot is reused by a later Insert.
//
// # Generations
//
// Generations start at 1, which makes the zero Ref invalid. A slot whose
// generation would wrap around is retired instead of reused.
//
// # Live set
//
// Live slot indexes are tracked in a roaring bitmap, which keeps Len and
// ordered iteration cheap even for sparse arenas after heavy churn.
//
// # Concurrency
//
// Arena is not safe for concurrent use; callers serialize access.
package arena
