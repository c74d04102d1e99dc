package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("el carrito está vacío")
	ErrStoreUndefined       = errors.New("no hay un local definido para esta venta")
	ErrCheckoutInProgress   = errors.New("ya hay una venta en curso para esta sesión")
	ErrProductNotFound      = errors.New("producto no encontrado")
	ErrOrderNotFound        = errors.New("venta no encontrada")
	ErrConfirmationRequired = errors.New("la anulación requiere confirmación")
)

// OrderInsertError means the sale header was not written. Nothing was persisted.
type OrderInsertError struct {
	Err error
}

func (e *OrderInsertError) Error() string {
	return fmt.Sprintf("error al registrar la venta: %v", e.Err)
}

func (e *OrderInsertError) Unwrap() error { return e.Err }

// ItemsInsertError means the header OrderID was written but its lines were not.
// The header is left in place.
type ItemsInsertError struct {
	OrderID uint
	Err     error
}

func (e *ItemsInsertError) Error() string {
	return fmt.Sprintf("venta #%d registrada sin detalle: %v", e.OrderID, e.Err)
}

func (e *ItemsInsertError) Unwrap() error { return e.Err }
