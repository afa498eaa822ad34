// Package validation binds and validates request parameters.
//
// It uses the `validator` library to enforce rules declared in struct
// tags and turns validation failures into field errors the client can
// act on.
package validation
