package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persisters(t *testing.T) map[string]Persister {
	t.Helper()
	sq, err := NewSQLite(":memory:")
	require.NoError(t, err)
	return map[string]Persister{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestPersister_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	for name, p := range persisters(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := p.Load(ctx, "rfq-storage")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, p.Save(ctx, "rfq-storage", []byte(`{"a":1}`)))
			require.NoError(t, p.Save(ctx, "rfq-storage", []byte(`{"a":2}`)))
			require.NoError(t, p.Save(ctx, "project-storage", []byte(`{}`)))

			data, ok, err := p.Load(ctx, "rfq-storage")
			require.NoError(t, err)
			require.True(t, ok)
			assert.JSONEq(t, `{"a":2}`, string(data))

			require.NoError(t, p.Delete(ctx, "rfq-storage", "project-storage", "missing"))
			_, ok, err = p.Load(ctx, "rfq-storage")
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = p.Load(ctx, "project-storage")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("etcd", "", "")
	assert.Error(t, err)
}
