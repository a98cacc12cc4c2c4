// Package services holds the storefront and back-office use cases. Services
// talk to the repositories and return the domain errors below, which the
// controllers translate into HTTP statuses.
package services

import "errors"

// Kinds. Match with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUpstream           = errors.New("upstream service failed")
)

// Specific failures callers may test for.
var (
	ErrEmailTaken   = &Error{Kind: ErrConflict, Msg: "Un compte existe déjà avec cet email"}
	ErrInvalidToken = &Error{Kind: ErrInvalidInput, Msg: "Lien de réinitialisation invalide ou expiré"}
	ErrEmptyCart    = &Error{Kind: ErrInvalidInput, Msg: "Votre panier est vide"}
)

// Error is a domain failure of a given kind with a client-facing message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool { return target == e.Kind }

func invalid(msg string) error  { return &Error{Kind: ErrInvalidInput, Msg: msg} }
func notFound(msg string) error { return &Error{Kind: ErrNotFound, Msg: msg} }
func conflict(msg string) error { return &Error{Kind: ErrConflict, Msg: msg} }
func forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Msg: msg}
}
