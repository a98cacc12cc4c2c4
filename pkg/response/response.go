// Package response writes the JSON envelope shared by every API route:
//
//	{"status":200,"message":"...","data":{...},"errors":{...}}
//
// Controllers go through pkg/ctx; this package serves the middleware and
// router fallbacks that run before a Context exists.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/diamantrouge/maison/pkg/orm"
)

type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// Page is the data of a paginated listing.
type Page struct {
	Items      any            `json:"items"`
	Pagination orm.Pagination `json:"pagination"`
}

func Write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Status: status, Message: message})
}

func Paginated(w http.ResponseWriter, items any, p orm.Pagination) {
	Write(w, http.StatusOK, Envelope{Status: http.StatusOK, Data: Page{Items: items, Pagination: p}})
}

func NotFound(w http.ResponseWriter) { Error(w, http.StatusNotFound, "Ressource introuvable") }

func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Trop de requêtes, veuillez réessayer dans une minute")
}
