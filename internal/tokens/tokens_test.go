package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return &Issuer{
		Secret:     []byte("test-jwt-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func TestIssuer_MintAccess_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()

	token, err := iss.MintAccess(42, true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := iss.Verify(token, TypeAccess)
	require.NoError(t, err)

	assert.Equal(t, TypeAccess, claims.Type)
	assert.True(t, claims.Fresh)
	assert.NotEmpty(t, claims.ID)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(iss.AccessTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssuer_MintRefresh_NeverFresh(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()

	token, err := iss.MintRefresh(7)
	require.NoError(t, err)

	claims, err := iss.Verify(token, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, claims.Type)
	assert.False(t, claims.Fresh)
}

func TestIssuer_JTIsAreUnique(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	seen := map[string]bool{}

	for i := 0; i < 50; i++ {
		token, err := iss.MintAccess(1, false)
		require.NoError(t, err)
		claims, err := iss.Verify(token, TypeAccess)
		require.NoError(t, err)
		require.False(t, seen[claims.ID], "jti %q minted twice", claims.ID)
		seen[claims.ID] = true
	}
}

func TestIssuer_Verify_Failures(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	other := &Issuer{Secret: []byte("some-other-secret"), AccessTTL: time.Minute, RefreshTTL: time.Hour}
	expiring := &Issuer{Secret: iss.Secret, AccessTTL: -time.Minute, RefreshTTL: time.Hour}

	accessToken, err := iss.MintAccess(1, true)
	require.NoError(t, err)
	foreignToken, err := other.MintAccess(1, true)
	require.NoError(t, err)
	expiredToken, err := expiring.MintAccess(1, true)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		expected string
		wantErr  error
	}{
		{name: "expired", token: expiredToken, expected: TypeAccess, wantErr: ErrExpired},
		{name: "bad signature", token: foreignToken, expected: TypeAccess, wantErr: ErrBadSignature},
		{name: "wrong type", token: accessToken, expected: TypeRefresh, wantErr: ErrWrongType},
		{name: "malformed", token: "not.a.jwt", expected: TypeAccess, wantErr: ErrMalformed},
		{name: "empty", token: "", expected: TypeAccess, wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := iss.Verify(tt.token, tt.expected)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
