package alloc

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader sdkmetric.Reader) map[string]int64 {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	res := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, m.Name)
			res[m.Name] = lo.SumBy(sum.DataPoints, func(dp metricdata.DataPoint[int64]) int64 {
				return dp.Value
			})
		}
	}
	return res
}

func TestMeteredAllocator(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	ma, err := NewMeteredAllocator(NewArena(16), mp.Meter(meterName), attribute.String("arena", "fixed"))
	require.NoError(t, err)

	a := ma.Allocate(8)
	require.Len(t, a, 8)
	require.Len(t, ma.Allocate(8), 8)
	require.Nil(t, ma.Allocate(8))
	ma.Release(a)

	sums := collectSums(t, reader)
	require.Equal(t, int64(2), sums["xlinked.alloc.allocations"])
	require.Equal(t, int64(1), sums["xlinked.alloc.failures"])
	require.Equal(t, int64(1), sums["xlinked.alloc.releases"])
	require.Equal(t, int64(8), sums["xlinked.alloc.inuse"])
}

func TestMeteredAllocator_ThroughRegistry(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	ma, err := NewMeteredAllocator(HeapAllocator{}, mp.Meter(meterName))
	require.NoError(t, err)
	r := NewRegistry()
	require.True(t, r.Register(ma))

	blocks := lo.Times(4, func(i int) []byte {
		return lo.Must(r.Allocate(uintptr(i + 1)))
	})
	for _, b := range blocks {
		require.NoError(t, r.Release(b))
	}
	sums := collectSums(t, reader)
	require.Equal(t, int64(4), sums["xlinked.alloc.allocations"])
	require.Equal(t, int64(4), sums["xlinked.alloc.releases"])
	require.Equal(t, int64(0), sums["xlinked.alloc.inuse"])
}

func TestMeteredAllocator_Nil(t *testing.T) {
	_, err := NewMeteredAllocator(nil, nil)
	require.ErrorIs(t, err, ErrNilAllocator)

	ma, err := NewMeteredAllocator(HeapAllocator{}, nil)
	require.NoError(t, err)
	require.Len(t, ma.Allocate(2), 2)
}
