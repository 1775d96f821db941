// Package catalogcsv lee el catálogo heredado exportado en CSV ISO-8859-1 separado por ';'.
//
// Columnas: nombre;categoria;precio_compra;precio_venta;umbral;cantidad
// Los importes usan coma decimal y punto de miles ("1.234,50").
package catalogcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Caisse-api/internal/application/dto"
)

const columns = 6

// RowError fila rechazada con su número de línea (1 = cabecera).
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

// Read decodifica r desde ISO-8859-1 y devuelve los productos válidos y las filas rechazadas.
// La primera fila es la cabecera y se omite. Una fila inválida no detiene la lectura.
func Read(r io.Reader) ([]dto.CreateProductRequest, []RowError, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		out      []dto.CreateProductRequest
		rejected []RowError
	)
	for n := 0; ; n++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("leer csv: %w", err)
		}
		if n == 0 || isBlank(record) {
			continue
		}
		p, err := parseRecord(record)
		if err != nil {
			line, _ := cr.FieldPos(0)
			rejected = append(rejected, RowError{Line: line, Err: err})
			continue
		}
		out = append(out, p)
	}
	return out, rejected, nil
}

func parseRecord(rec []string) (dto.CreateProductRequest, error) {
	if len(rec) < columns {
		return dto.CreateProductRequest{}, fmt.Errorf("se esperaban %d columnas, hay %d", columns, len(rec))
	}
	purchase, err := parseAmount(rec[2])
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("precio_compra: %w", err)
	}
	sale, err := parseAmount(rec[3])
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("precio_venta: %w", err)
	}
	threshold, err := parseCount(rec[4])
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("umbral: %w", err)
	}
	qty, err := parseCount(rec[5])
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("cantidad: %w", err)
	}
	return dto.CreateProductRequest{
		Name:             strings.TrimSpace(rec[0]),
		Category:         strings.TrimSpace(rec[1]),
		PurchasePrice:    purchase,
		SalePrice:        sale,
		ReorderThreshold: threshold,
		InitialStock:     qty,
	}, nil
}

// parseAmount acepta "1.234,50", "12,5" y "12". Vacío vale 0.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	return decimal.NewFromString(s)
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negativo: %d", n)
	}
	return n, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
