package domain

import (
	"errors"
	"fmt"
)

// ErrShopUnresolved is returned when no shop can be determined for a request
var ErrShopUnresolved = errors.New("shop parameter missing")

// SessionNotFoundError is returned when no offline session exists for a shop
type SessionNotFoundError struct {
	Shop string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("no offline session found for shop %s", e.Shop)
}

// AdminAuthError is returned when no admin client can be built for a session
type AdminAuthError struct {
	Shop string
	Err  error
}

func (e *AdminAuthError) Error() string {
	return fmt.Sprintf("admin authentication failed for shop %s: %v", e.Shop, e.Err)
}

func (e *AdminAuthError) Unwrap() error {
	return e.Err
}

// GraphQLFailure is returned when a mutation response carries transport-level errors
type GraphQLFailure struct {
	Step   string
	Errors []GraphQLError
}

func (e *GraphQLFailure) Error() string {
	return fmt.Sprintf("GraphQL errors in %s", e.Step)
}

// RejectionKind names the workflow step whose mutation was rejected
type RejectionKind string

const (
	CompanyCreateRejected  RejectionKind = "CompanyCreateRejected"
	CustomerCreateRejected RejectionKind = "CustomerCreateRejected"
	AssignmentRejected     RejectionKind = "AssignmentRejected"
)

// RejectedError is returned when a mutation payload carries userErrors
type RejectedError struct {
	Kind       RejectionKind
	Message    string
	UserErrors []UserError
}

func (e *RejectedError) Error() string {
	return e.Message
}
