// Package identity models the active identity chosen at login: a cashier bound to one
// store, or the administrator.
package identity

import (
	"errors"
	"fmt"
	"strconv"

	"pos-service/internal/model"
)

// Identity is the active identity string: "1", "2", "3" or "admin"
type Identity string

// Admin is the administrator identity
const Admin Identity = "admin"

// ErrUnknownIdentity is returned for values outside the fixed choice set
var ErrUnknownIdentity = errors.New("unknown identity")

// Choice is one option of the login selector
type Choice struct {
	Value Identity
	Label string
}

// Parse accepts exactly the login choices
func Parse(s string) (Identity, error) {
	id := Identity(s)
	if id == Admin {
		return id, nil
	}
	if _, ok := id.StoreID(); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIdentity, s)
}

// ForStore returns the cashier identity of a store
func ForStore(storeID model.StoreID) Identity {
	return Identity(strconv.FormatUint(uint64(storeID), 10))
}

// IsAdmin reports whether this is the administrator identity
func (i Identity) IsAdmin() bool {
	return i == Admin
}

// StoreID returns the store of a cashier identity
func (i Identity) StoreID() (model.StoreID, bool) {
	n, err := strconv.ParseUint(string(i), 10, 32)
	if err != nil {
		return 0, false
	}
	id := model.StoreID(n)
	if !id.Valid() || string(ForStore(id)) != string(i) {
		return 0, false
	}
	return id, true
}

// Label returns the login selector label
func (i Identity) Label() string {
	if i.IsAdmin() {
		return "ADMINISTRADOR - (Dashboard Global)"
	}
	if id, ok := i.StoreID(); ok {
		return "Vendedor - " + id.Name()
	}
	return string(i)
}

// Home returns the screen an identity lands on after login
func (i Identity) Home() string {
	if i.IsAdmin() {
		return "/dashboard"
	}
	return "/pos"
}

// Choices returns the login options in display order
func Choices() []Choice {
	choices := make([]Choice, 0, len(model.Stores)+1)
	for _, s := range model.Stores {
		id := ForStore(s.ID)
		choices = append(choices, Choice{Value: id, Label: id.Label()})
	}
	return append(choices, Choice{Value: Admin, Label: Admin.Label()})
}
