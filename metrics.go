package pathstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives one call per completed store operation.
// Implement it to feed a monitoring system.
type MetricsCollector interface {
	// RecordCreate is called after Create (and Clone).
	RecordCreate(dimensionality int, duration time.Duration, err error)
	// RecordSetAxis is called after SetAxis with the number of samples.
	RecordSetAxis(samples int, duration time.Duration, err error)
	// RecordSerialize is called after Serialize with the blob size.
	RecordSerialize(bytes int, duration time.Duration, err error)
	// RecordDeserialize is called after Deserialize with the input size.
	RecordDeserialize(bytes int, duration time.Duration, err error)
	// RecordDestroy is called after Destroy.
	RecordDestroy(duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCreate(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordSetAxis(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordSerialize(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordDeserialize(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDestroy(time.Duration, error)          {}

// BasicMetricsCollector counts operations in memory.
type BasicMetricsCollector struct {
	CreateCount           atomic.Int64
	CreateErrors          atomic.Int64
	SetAxisCount          atomic.Int64
	SetAxisErrors         atomic.Int64
	SetAxisSamples        atomic.Int64
	SerializeCount        atomic.Int64
	SerializeErrors       atomic.Int64
	SerializeBytes        atomic.Int64
	SerializeTotalNanos   atomic.Int64
	DeserializeCount      atomic.Int64
	DeserializeErrors     atomic.Int64
	DeserializeBytes      atomic.Int64
	DeserializeTotalNanos atomic.Int64
	DestroyCount          atomic.Int64
	DestroyErrors         atomic.Int64
}

func (b *BasicMetricsCollector) RecordCreate(_ int, _ time.Duration, err error) {
	b.CreateCount.Add(1)
	if err != nil {
		b.CreateErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordSetAxis(samples int, _ time.Duration, err error) {
	b.SetAxisCount.Add(1)
	if err != nil {
		b.SetAxisErrors.Add(1)
		return
	}
	b.SetAxisSamples.Add(int64(samples))
}

func (b *BasicMetricsCollector) RecordSerialize(bytes int, d time.Duration, err error) {
	b.SerializeCount.Add(1)
	b.SerializeTotalNanos.Add(d.Nanoseconds())
	if err != nil {
		b.SerializeErrors.Add(1)
		return
	}
	b.SerializeBytes.Add(int64(bytes))
}

func (b *BasicMetricsCollector) RecordDeserialize(bytes int, d time.Duration, err error) {
	b.DeserializeCount.Add(1)
	b.DeserializeTotalNanos.Add(d.Nanoseconds())
	if err != nil {
		b.DeserializeErrors.Add(1)
		return
	}
	b.DeserializeBytes.Add(int64(bytes))
}

func (b *BasicMetricsCollector) RecordDestroy(_ time.Duration, err error) {
	b.DestroyCount.Add(1)
	if err != nil {
		b.DestroyErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CreateCount:         b.CreateCount.Load(),
		CreateErrors:        b.CreateErrors.Load(),
		SetAxisCount:        b.SetAxisCount.Load(),
		SetAxisErrors:       b.SetAxisErrors.Load(),
		SetAxisSamples:      b.SetAxisSamples.Load(),
		SerializeCount:      b.SerializeCount.Load(),
		SerializeErrors:     b.SerializeErrors.Load(),
		SerializeBytes:      b.SerializeBytes.Load(),
		SerializeAvgNanos:   avg(b.SerializeTotalNanos.Load(), b.SerializeCount.Load()),
		DeserializeCount:    b.DeserializeCount.Load(),
		DeserializeErrors:   b.DeserializeErrors.Load(),
		DeserializeBytes:    b.DeserializeBytes.Load(),
		DeserializeAvgNanos: avg(b.DeserializeTotalNanos.Load(), b.DeserializeCount.Load()),
		DestroyCount:        b.DestroyCount.Load(),
		DestroyErrors:       b.DestroyErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	CreateCount         int64
	CreateErrors        int64
	SetAxisCount        int64
	SetAxisErrors       int64
	SetAxisSamples      int64
	SerializeCount      int64
	SerializeErrors     int64
	SerializeBytes      int64
	SerializeAvgNanos   int64
	DeserializeCount    int64
	DeserializeErrors   int64
	DeserializeBytes    int64
	DeserializeAvgNanos int64
	DestroyCount        int64
	DestroyErrors       int64
}
