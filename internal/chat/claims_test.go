package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUserFromClaims(t *testing.T) {
	t.Parallel()

	now := time.Now()
	u := UserFromClaims(Claims{
		Subject:    "auth0|42",
		GivenName:  "Alice",
		Nickname:   "ali",
		FamilyName: "Liddell",
		Email:      "alice@example.com",
	}, now)

	require.Equal(t, "auth0|42", u.ID)
	require.Equal(t, "Alice", u.FirstName)
	require.Equal(t, "Liddell", u.LastName)
	require.Equal(t, "alice@example.com", u.Email)
	require.NotNil(t, u.LastSeen)
	require.Equal(t, now, *u.LastSeen)
}

func TestUserFromClaimsNicknameFallback(t *testing.T) {
	t.Parallel()

	u := UserFromClaims(Claims{Subject: "auth0|42", Nickname: "ali"}, time.Now())
	require.Equal(t, "ali", u.FirstName)
}

func TestUserFromClaimsGivenNamePreferred(t *testing.T) {
	t.Parallel()

	u := UserFromClaims(Claims{Subject: "auth0|42", GivenName: "Alice", Nickname: "ali"}, time.Now())
	require.Equal(t, "Alice", u.FirstName)
}
