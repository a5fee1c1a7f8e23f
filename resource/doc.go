// Package resource implements the budgets a path store runs under.
//
//   - Memory: sample storage is charged with the fail-fast TryAcquireMemory;
//     a refused reservation surfaces as an allocation failure.
//   - Background workers: bound parallel export and import transfers.
//   - IO: a token bucket throttling blob reads and writes.
//
// All methods are safe for concurrent use and tolerate a nil *Controller.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:     64 << 20,
//	    MaxBackgroundWorkers: 4,
//	    IOLimitBytesPerSec:   32 << 20,
//	})
package resource
