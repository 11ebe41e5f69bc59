package registrationrepo

import "errors"

// ErrAlreadyExists indicates a registration with the provided ID already exists.
var ErrAlreadyExists = errors.New("registration already exists")
