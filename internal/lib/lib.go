// Package lib holds clients for external systems that do not fit into the
// handler, service or model layers.
//
// census is the Census Bureau Data API client.
package lib
