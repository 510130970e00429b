package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/repository"
	"go.uber.org/zap"
)

const (
	maxProductNameLength = 120
	defaultProductLimit  = 20
	maxProductLimit      = 100
)

// ImageStore persists product images and returns a public URL for each.
type ImageStore interface {
	Upload(ctx context.Context, sellerID uint64, filename, contentType string, r io.Reader) (string, error)
}

type CreateProductInput struct {
	Name          string
	Description   string
	Brand         string
	Category      string
	Price         uint
	StockQuantity int
	ImageURL      *string
}

type ProductService interface {
	Create(ctx context.Context, sellerID uint64, in CreateProductInput) (*model.Product, error)
	Get(ctx context.Context, id uint64) (*model.Product, error)
	List(ctx context.Context, limit, offset int) ([]model.Product, int64, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Product, error)
	// Names maps product ids to names; unknown ids are omitted.
	Names(ctx context.Context, ids []uint64) (map[uint64]string, error)
	UploadImage(ctx context.Context, sellerID uint64, filename, contentType string, r io.Reader) (string, error)
}

type productService struct {
	repo   repository.ProductRepository
	images ImageStore
	deps   Deps
}

// NewProductService accepts a nil ImageStore; uploads then fail with a policy error.
func NewProductService(repo repository.ProductRepository, images ImageStore, deps Deps) ProductService {
	return &productService{repo: repo, images: images, deps: deps}
}

func (s *productService) Create(ctx context.Context, sellerID uint64, in CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > maxProductNameLength {
		return nil, invalid("invalid_name", fmt.Sprintf("Product name must be 1 to %d characters", maxProductNameLength))
	}
	if in.Price == 0 {
		return nil, invalid("invalid_price", "Price must be greater than zero")
	}
	if in.StockQuantity < 0 {
		return nil, invalid("invalid_stock", "Stock quantity cannot be negative")
	}
	p := &model.Product{
		Name:             name,
		Description:      strings.TrimSpace(in.Description),
		Brand:            strings.TrimSpace(in.Brand),
		Category:         strings.TrimSpace(in.Category),
		Price:            in.Price,
		StockQuantity:    in.StockQuantity,
		ProductAvailable: in.StockQuantity > 0,
		ImageURL:         in.ImageURL,
		SellerID:         sellerID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("service: create product: %w", err)
	}
	s.deps.log(ctx).Info("product created", zap.Uint64("product_id", p.ID), zap.Uint64("seller_id", sellerID))
	return p, nil
}

func (s *productService) Get(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, errProductNotFound, "find product")
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
	if limit <= 0 {
		limit = defaultProductLimit
	}
	if limit > maxProductLimit {
		limit = maxProductLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, total, err := s.repo.ListAvailable(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("service: list products: %w", err)
	}
	return list, total, nil
}

func (s *productService) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Product, error) {
	list, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("service: list seller products: %w", err)
	}
	return list, nil
}

func (s *productService) Names(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	list, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: load products: %w", err)
	}
	out := make(map[uint64]string, len(list))
	for _, p := range list {
		out[p.ID] = p.Name
	}
	return out, nil
}

func (s *productService) UploadImage(ctx context.Context, sellerID uint64, filename, contentType string, r io.Reader) (string, error) {
	if s.images == nil {
		return "", policy("storage_disabled", "Image uploads are not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", invalid("invalid_image", "Only image files can be uploaded")
	}
	url, err := s.images.Upload(ctx, sellerID, filename, contentType, r)
	if err != nil {
		s.deps.log(ctx).Error("image upload failed", zap.Uint64("seller_id", sellerID), zap.Error(err))
		return "", fmt.Errorf("service: upload image: %w", err)
	}
	return url, nil
}
