package alloc

// https://opentelemetry.io/docs/languages/go/instrumentation/#metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"github.com/benz9527/xlinked/lib/infra"
)

const meterName = "xlinked/alloc"

var _ Allocator = (*MeteredAllocator)(nil)

// MeteredAllocator records allocation activity of the wrapped allocator.
type MeteredAllocator struct {
	impl        Allocator
	attrs       metric.MeasurementOption
	allocations metric.Int64Counter
	failures    metric.Int64Counter
	releases    metric.Int64Counter
	inUse       metric.Int64UpDownCounter
}

// NewMeteredAllocator wraps impl. A nil meter falls back to the global
// meter provider.
func NewMeteredAllocator(impl Allocator, meter metric.Meter, attrs ...attribute.KeyValue) (*MeteredAllocator, error) {
	if impl == nil {
		return nil, infra.WrapErrorStack(ErrNilAllocator)
	}
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	var (
		merr error
		err  error
		ma   = &MeteredAllocator{
			impl:  impl,
			attrs: metric.WithAttributes(attrs...),
		}
	)
	ma.allocations, err = meter.Int64Counter(
		"xlinked.alloc.allocations",
		metric.WithDescription("Granted allocations."),
	)
	merr = multierr.Append(merr, err)
	ma.failures, err = meter.Int64Counter(
		"xlinked.alloc.failures",
		metric.WithDescription("Allocations the wrapped allocator refused."),
	)
	merr = multierr.Append(merr, err)
	ma.releases, err = meter.Int64Counter(
		"xlinked.alloc.releases",
		metric.WithDescription("Released blocks."),
	)
	merr = multierr.Append(merr, err)
	ma.inUse, err = meter.Int64UpDownCounter(
		"xlinked.alloc.inuse",
		metric.WithDescription("Bytes currently held by callers."),
		metric.WithUnit("By"),
	)
	merr = multierr.Append(merr, err)
	if merr != nil {
		return nil, infra.WrapErrorStackWithMessage(merr, "failed to create alloc instruments")
	}
	return ma, nil
}

func (ma *MeteredAllocator) Allocate(size uintptr) []byte {
	ctx := context.Background()
	mem := ma.impl.Allocate(size)
	if !granted(mem, size) {
		ma.failures.Add(ctx, 1, ma.attrs)
		return nil
	}
	ma.allocations.Add(ctx, 1, ma.attrs)
	ma.inUse.Add(ctx, int64(len(mem)), ma.attrs)
	return mem
}

func (ma *MeteredAllocator) Release(mem []byte) {
	ctx := context.Background()
	ma.impl.Release(mem)
	ma.releases.Add(ctx, 1, ma.attrs)
	ma.inUse.Add(ctx, -int64(len(mem)), ma.attrs)
}
