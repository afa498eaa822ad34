// Package handler is the HTTP layer that sits right after the router.
//
// It binds query parameters, validates them with the validation package
// and calls the service layer. Handlers never talk to the Census API
// directly except for the diagnostic endpoints.
package handler
