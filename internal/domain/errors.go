package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrForbidden               = errors.New("acceso denegado")
	ErrConflict                = errors.New("conflicto con el estado actual")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrInvalidStateTransition  = errors.New("transición de estado inválida")
	ErrInvalidPaymentReference = errors.New("referencia de pago requerida")
	ErrAlreadyCancelled        = errors.New("la transacción ya está anulada")
	ErrActiveSession           = errors.New("el cajero ya tiene una sesión de caja activa")
	ErrHasReferences           = errors.New("el recurso tiene referencias; debe archivarse")
	ErrDatabase                = errors.New("error de base de datos")
)

// InsufficientStockError detalla el rechazo de un movimiento que dejaría el stock en negativo.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: disponible %d, solicitado %d",
		e.ProductID, e.Available, e.Requested)
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NewInsufficientStock construye el error con el contexto del producto.
func NewInsufficientStock(productID string, available, requested int) error {
	return &InsufficientStockError{ProductID: productID, Available: available, Requested: requested}
}
