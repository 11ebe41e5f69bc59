package authprovider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

func TestProvider_AnyPasswordSucceedsWithStableUserID(t *testing.T) {
	p := NewProvider()
	login := domain.LoginID("00410042@signup.invalid")

	a, err := p.SignIn(context.Background(), login, "")
	require.NoError(t, err)
	b, err := p.SignIn(context.Background(), login, "something-else")
	require.NoError(t, err)

	assert.Equal(t, a.UserID, b.UserID)
	assert.Equal(t, UserIDFor(login), a.UserID)
	assert.Equal(t, login, a.LoginID)
	assert.NotEqual(t, a.AccessToken, b.AccessToken)

	other, err := p.SignIn(context.Background(), "0043@signup.invalid", "x")
	require.NoError(t, err)
	assert.NotEqual(t, a.UserID, other.UserID)

	assert.NoError(t, p.SignOut(context.Background(), a.AccessToken))
}
