package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIncAndSnapshot(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.Inc(ctx, "ticks_total", nil, 1)
	r.Inc(ctx, "ticks_total", nil, 2)
	r.Inc(ctx, "http_requests_total", map[string]string{"status": "2xx", "path": "/v1/tick"}, 1)

	snap := r.SnapshotJSON()
	require.Equal(t, int64(3), snap["ticks_total"])
	require.Equal(t, int64(1), snap["http_requests_total{path=/v1/tick,status=2xx}"])

	lines := r.SnapshotLines()
	require.Contains(t, lines, "ticks_total 3")
}

func TestFullKeyDeterministic(t *testing.T) {
	a := fullKey("c", map[string]string{"b": "2", "a": "1"})
	b := fullKey("c", map[string]string{"a": "1", "b": "2"})
	require.Equal(t, a, b)
	require.Equal(t, "c{a=1,b=2}", a)
}
