package client

import "errors"

var (
	// ErrNoCredentials is returned by Run when no session is stored locally
	// and no login/password pair was supplied to create one.
	ErrNoCredentials = errors.New("no stored session and no credentials provided")
)
