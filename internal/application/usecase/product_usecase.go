package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Caisse-api/internal/application/dto"
	"github.com/jhoicas/Caisse-api/internal/application/inventory"
	"github.com/jhoicas/Caisse-api/internal/application/ports"
	"github.com/jhoicas/Caisse-api/internal/application/validation"
	"github.com/jhoicas/Caisse-api/internal/domain"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

// Resultados de Remove.
const (
	RemoveArchived = "archived"
	RemoveDeleted  = "deleted"
)

// ProductUseCase casos de uso del catálogo. El stock se maneja solo vía movimientos del libro de stock.
type ProductUseCase struct {
	txRunner ports.TxRunner
	repo     repository.ProductRepository
	stock    *inventory.MovementUseCase
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner ports.TxRunner, repo repository.ProductRepository, stock *inventory.MovementUseCase) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repo: repo, stock: stock}
}

// Create crea un producto con stock 0. Un InitialStock positivo se registra como entrada en la
// misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:               uuid.New().String(),
		Name:             strings.TrimSpace(in.Name),
		Category:         strings.TrimSpace(in.Category),
		PurchasePrice:    in.PurchasePrice,
		SalePrice:        entity.RoundMoney(in.SalePrice),
		StockActual:      0,
		ReorderThreshold: in.ReorderThreshold,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		_, err := uc.stock.ApplyMovementInTx(ctx, repos, inventory.MovementInput{
			ProductID: product.ID,
			Kind:      entity.MovementIn,
			Quantity:  in.InitialStock,
			Reason:    "stock inicial",
			ActorID:   actorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	product.StockActual = in.InitialStock
	return dto.FromProduct(product), nil
}

// GetByID obtiene un producto por ID o domain.ErrNotFound.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromProduct(product), nil
}

// Update actualiza datos de catálogo. No modifica el stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		// Bloqueo de fila: una entrada concurrente con costo no se pisa con un precio leído antes.
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		applyUpdate(p, in)
		p.UpdatedAt = time.Now().UTC()
		if err := repos.Products.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.FromProduct(product), nil
}

func applyUpdate(p *entity.Product, in dto.UpdateProductRequest) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.PurchasePrice != nil {
		p.PurchasePrice = *in.PurchasePrice
	}
	if in.SalePrice != nil {
		p.SalePrice = entity.RoundMoney(*in.SalePrice)
	}
	if in.ReorderThreshold != nil {
		p.ReorderThreshold = *in.ReorderThreshold
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, category string, activeOnly bool, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Category:   category,
		ActiveOnly: activeOnly,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.FromProduct(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListBelowThreshold lista productos activos con stock <= umbral de reposición.
func (uc *ProductUseCase) ListBelowThreshold(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListBelowThreshold(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.FromProduct(p))
	}
	return items, nil
}

// Archive desactiva el producto. Siempre permitido; conserva el historial.
func (uc *ProductUseCase) Archive(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	product.Active = false
	return dto.FromProduct(product), nil
}

// Delete borra el producto solo si ningún movimiento ni línea de venta lo referencia;
// en caso contrario devuelve domain.ErrHasReferences.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		// El bloqueo serializa contra movimientos concurrentes del mismo producto.
		product, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		refs, err := repos.Products.CountReferences(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("producto %s con %d referencias: %w", id, refs, domain.ErrHasReferences)
		}
		return repos.Products.Delete(ctx, id)
	})
}

// Remove borra el producto si no tiene referencias y, si las tiene, lo archiva.
// Devuelve RemoveDeleted o RemoveArchived.
func (uc *ProductUseCase) Remove(ctx context.Context, id string) (string, error) {
	refs, err := uc.repo.CountReferences(ctx, id)
	if err != nil {
		return "", err
	}
	if refs == 0 {
		err := uc.Delete(ctx, id)
		if err == nil {
			return RemoveDeleted, nil
		}
		if !errors.Is(err, domain.ErrHasReferences) {
			return "", err
		}
	}
	if _, err := uc.Archive(ctx, id); err != nil {
		return "", err
	}
	return RemoveArchived, nil
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return product, nil
}
