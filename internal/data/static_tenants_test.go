package data

import (
	"context"
	"testing"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStaticTenants(t *testing.T) {
	st, err := ParseStaticTenants(" op-1 = 42 ; ;op-2=7;")
	require.NoError(t, err)

	ctx := context.Background()
	tenant, err := st.Lookup(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.TenantID("42"), tenant)

	list, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "op-2", list[1].UserID)
}

func TestParseStaticTenants_Invalid(t *testing.T) {
	for _, raw := range []string{"op-1", "=42", "op-1="} {
		_, err := ParseStaticTenants(raw)
		assert.Error(t, err, raw)
	}

	st, err := ParseStaticTenants("")
	require.NoError(t, err)
	list, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStaticTenants_AssignRemove(t *testing.T) {
	st, err := ParseStaticTenants("")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Assign(ctx, "op-9", "3"))
	tenant, err := st.Lookup(ctx, "op-9")
	require.NoError(t, err)
	assert.Equal(t, domainauth.TenantID("3"), tenant)

	assert.ErrorIs(t, st.Assign(ctx, "op-9", ""), ErrHotelIDRequired)
	require.NoError(t, st.Remove(ctx, "op-9"))
	assert.ErrorIs(t, st.Remove(ctx, "op-9"), domainauth.ErrTenantNotAssigned)
	_, err = st.Lookup(ctx, "op-9")
	assert.ErrorIs(t, err, domainauth.ErrTenantNotAssigned)
}
