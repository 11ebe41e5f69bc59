package taxonomyrepo

import "errors"

// ErrAlreadyExists indicates an entry with the provided ID already exists.
var ErrAlreadyExists = errors.New("taxonomy entry already exists")
