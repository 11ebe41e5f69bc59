package domain

// User is the signed-in user as seen by the application.
//
// DisplayName and IDSuffix are decoded from LoginID; they are not stored separately.
type User struct {
	ID      UserID
	LoginID LoginID

	DisplayName string
	IDSuffix    string

	IsAdmin bool
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID       UserID
	LoginID      LoginID
	SessionToken string
}
