package service

import (
	"context"
	"errors"

	"stockpos/internal/dto"
	"stockpos/internal/model"
	"stockpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductService is a thin CRUD surface over the catalog. The interesting
// stock behavior lives in InventoryService and SaleService.
type ProductService interface {
	Create(ctx context.Context, storeID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, storeID uuid.UUID, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, storeID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, storeID, id uuid.UUID) error
	Reactivate(ctx context.Context, storeID, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, storeID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		StoreID: storeID,
		SKU:     req.SKU,
		Name:    req.Name,
		Price:   req.Price,
		Active:  true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) FindByID(ctx context.Context, storeID, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.scoped(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, storeID uuid.UUID, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, storeID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, storeID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.scoped(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, storeID, id uuid.UUID) error {
	if _, err := s.scoped(ctx, storeID, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productService) Reactivate(ctx context.Context, storeID, id uuid.UUID) error {
	if _, err := s.scoped(ctx, storeID, id); err != nil {
		return err
	}
	return s.repo.Reactivate(ctx, id)
}

// scoped resolves a product and enforces store ownership.
func (s *productService) scoped(ctx context.Context, storeID, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.StoreID != storeID {
		return nil, ErrProductNotOwned
	}
	return p, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID.String(),
		StoreID:   p.StoreID.String(),
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price,
		Active:    p.Active,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
