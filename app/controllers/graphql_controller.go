package controllers

import (
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/pkg/bind"
	gql "github.com/gmcandra/mebelshop/pkg/graphql"
	"github.com/gmcandra/mebelshop/pkg/response"
)

// GraphQLController exposes a read-only catalog query endpoint, mainly
// for storefront clients that want to fetch products and categories in
// one round trip.
type GraphQLController struct {
	schema graphql.Schema
}

func NewGraphQLController(catalog *services.CatalogService) (*GraphQLController, error) {
	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.Int},
			"name": &graphql.Field{Type: graphql.String},
			"slug": &graphql.Field{Type: graphql.String},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.Int},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"price":       &graphql.Field{Type: graphql.Float},
			"stock":       &graphql.Field{Type: graphql.Int},
			"image":       &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{
				Type: categoryType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, ok := p.Source.(models.Product)
					if !ok {
						return nil, nil
					}
					return product.Category, nil
				},
			},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 12},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					slug, _ := p.Args["category"].(string)
					page, _ := p.Args["page"].(int)
					limit, _ := p.Args["limit"].(int)
					products, _, err := catalog.Products(slug, page, limit)
					return products, err
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					return catalog.Product(uint(id))
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return catalog.Categories()
				},
			},
			"search": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"q":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, _ := p.Args["q"].(string)
					limit, _ := p.Args["limit"].(int)
					return catalog.Search(q, limit)
				},
			},
		},
	})

	schema, err := gql.NewSchema(query)
	if err != nil {
		return nil, fmt.Errorf("controllers: build graphql schema: %w", err)
	}
	return &GraphQLController{schema: schema}, nil
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (c *GraphQLController) Query(w http.ResponseWriter, r *http.Request) {
	var body graphqlRequest
	if _, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Query == "" {
		response.Error(w, http.StatusBadRequest, "missing query")
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         c.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		Context:        r.Context(),
	})
	response.Success(w, result)
}
