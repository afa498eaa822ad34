// Package service contains the business logic.
//
// It sits between the handler layer and the outbound Census client: it
// receives validated input from the handler, performs the lookups and
// shapes the results the handler renders.
package service
