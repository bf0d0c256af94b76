// SPDX-License-Identifier: Apache-2.0

// Package gql exposes the authentication core as a GraphQL schema: the
// signup, login, and logout mutations and the current-user query. This is
// the only seam the query layer crosses into the core.
package gql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/samber/oops"

	"github.com/ashley-desouza/graphql-auth-server/internal/auth"
)

// Client-facing error messages. Failure kinds the client cannot correct
// collapse into errInternal so nothing about the infrastructure leaks.
var (
	errMissingField       = errors.New("you must provide an email and password")
	errEmailInUse         = errors.New("email in use")
	errInvalidCredentials = errors.New("invalid credentials")
	errNoSession          = errors.New("no session")
	errInternal           = errors.New("internal server error")
)

// userType mirrors the identity record's public surface. The password hash
// is deliberately unreachable from the schema.
var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserType",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if u, ok := p.Source.(*auth.User); ok {
					return u.ID.String(), nil
				}
				return nil, nil
			},
		},
		"email": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if u, ok := p.Source.(*auth.User); ok {
					return u.Email, nil
				}
				return nil, nil
			},
		},
	},
})

// NewSchema builds the GraphQL schema over the auth service.
func NewSchema(svc *auth.Service) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQueryType",
		Fields: graphql.Fields{
			"user": &graphql.Field{
				Type:        userType,
				Description: "The currently authenticated user, or null.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					handle, ok := HandleFrom(p.Context)
					if !ok {
						return nil, nil
					}
					user, err := svc.CurrentUser(p.Context, handle)
					if err != nil {
						return nil, clientError(err)
					}
					if user == nil {
						return nil, nil
					}
					return user, nil
				},
			},
		},
	})

	credentialArgs := graphql.FieldConfigArgument{
		"email":    &graphql.ArgumentConfig{Type: graphql.String},
		"password": &graphql.ArgumentConfig{Type: graphql.String},
	}

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"signup": &graphql.Field{
				Type: userType,
				Args: credentialArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					handle, ok := HandleFrom(p.Context)
					if !ok {
						return nil, errNoSession
					}
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)

					user, err := svc.Signup(p.Context, handle, email, password)
					if err != nil {
						return nil, clientError(err)
					}
					return user, nil
				},
			},
			"login": &graphql.Field{
				Type: userType,
				Args: credentialArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					handle, ok := HandleFrom(p.Context)
					if !ok {
						return nil, errNoSession
					}
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)

					user, err := svc.Login(p.Context, handle, email, password)
					if err != nil {
						return nil, clientError(err)
					}
					return user, nil
				},
			},
			"logout": &graphql.Field{
				Type:        userType,
				Description: "Detach the current identity; returns who was logged in.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					handle, ok := HandleFrom(p.Context)
					if !ok {
						return nil, nil
					}
					user, err := svc.Logout(p.Context, handle)
					if err != nil {
						return nil, clientError(err)
					}
					if user == nil {
						return nil, nil
					}
					return user, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		return graphql.Schema{}, oops.Code("SCHEMA_BUILD_FAILED").Wrap(err)
	}
	return schema, nil
}

// clientError maps a typed core failure to its stable client message.
// Unknown kinds are infrastructure failures and are masked.
func clientError(err error) error {
	switch {
	case auth.HasCode(err, auth.CodeMissingField):
		return errMissingField
	case auth.HasCode(err, auth.CodeEmailInUse):
		return errEmailInUse
	case auth.HasCode(err, auth.CodeInvalidCredentials):
		return errInvalidCredentials
	default:
		return errInternal
	}
}
