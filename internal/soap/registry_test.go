package soap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, Args) (Map, error) { return Map{}, nil }

func TestNewRegistry(t *testing.T) {
	t.Run("lookup and sorted names", func(t *testing.T) {
		r, err := NewRegistry(
			Method{Name: "LookupWbid", Handler: noop},
			Method{Name: "AssociateWbid", Handler: noop},
			Method{Name: "GetSubscriptionInformation", Handler: noop, EmptyResultIsFault: true},
		)
		require.NoError(t, err)

		m, ok := r.Lookup("GetSubscriptionInformation")
		require.True(t, ok)
		assert.True(t, m.EmptyResultIsFault)

		_, ok = r.Lookup("lookupwbid")
		assert.False(t, ok, "lookup is case sensitive")

		assert.Equal(t, []string{"AssociateWbid", "GetSubscriptionInformation", "LookupWbid"}, r.Names())
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := NewRegistry(Method{Name: "A", Handler: noop}, Method{Name: "A", Handler: noop})
		require.Error(t, err)
	})

	t.Run("rejects missing handler", func(t *testing.T) {
		_, err := NewRegistry(Method{Name: "A"})
		require.Error(t, err)
	})
}
