package service

import (
	"context"
	"fmt"

	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/repository"
)

type OrderSummary struct {
	Count      int64
	TotalSpent uint64
}

type OrderService interface {
	ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Order, error)
	Summary(ctx context.Context, buyerID uint64) (*OrderSummary, error)
}

type orderService struct {
	repo repository.OrderRepository
}

func NewOrderService(repo repository.OrderRepository) OrderService {
	return &orderService{repo: repo}
}

func (s *orderService) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error) {
	list, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("service: list orders: %w", err)
	}
	return list, nil
}

func (s *orderService) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Order, error) {
	list, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("service: list sales: %w", err)
	}
	return list, nil
}

func (s *orderService) Summary(ctx context.Context, buyerID uint64) (*OrderSummary, error) {
	count, total, err := s.repo.SummaryByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("service: order summary: %w", err)
	}
	return &OrderSummary{Count: count, TotalSpent: total}, nil
}
