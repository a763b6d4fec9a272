// Package graphql hosts the catalog's read-only GraphQL endpoint.
package graphql

import (
	"github.com/graphql-go/graphql"
)

// NewSchema builds a query-only schema from the provided root query object.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}
