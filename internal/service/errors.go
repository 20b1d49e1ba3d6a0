package service

import "errors"

var (
	// ErrUnknownProvider is returned when no telematics provider is
	// configured under the requested name.
	ErrUnknownProvider = errors.New("unknown telematics provider")

	// ErrInvalidAuthCode is returned when the authorization code is empty.
	ErrInvalidAuthCode = errors.New("invalid authorization code")

	// ErrProviderRejected is returned when the telematics provider refuses
	// the code exchange or an API call.
	ErrProviderRejected = errors.New("telematics provider rejected the request")
)
