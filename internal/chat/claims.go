package chat

import "time"

// Claims is the typed shape of the identity-provider token attributes the
// backend cares about. Fields left empty by the provider stay empty.
type Claims struct {
	Subject    string `json:"sub"`
	GivenName  string `json:"given_name"`
	Nickname   string `json:"nickname"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
}

// UserFromClaims maps token claims onto a User and stamps LastSeen with the
// given moment. The first name falls back from given_name to nickname, in
// that order.
func UserFromClaims(c Claims, now time.Time) User {
	firstName := c.GivenName
	if firstName == "" {
		firstName = c.Nickname
	}

	return User{
		ID:        c.Subject,
		FirstName: firstName,
		LastName:  c.FamilyName,
		Email:     c.Email,
		LastSeen:  &now,
	}
}
