package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
	"github.com/prohmpiriya/event-ticketing/pkg/telemetry"
)

// ListInvalidator drops cached event lists whose seat counts went stale
type ListInvalidator interface {
	InvalidateLists(ctx context.Context)
}

// purchaseService implements PurchaseService
type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	availability AvailabilityCache
	lists        ListInvalidator
}

// NewPurchaseService creates a new PurchaseService. availability and lists may be nil.
func NewPurchaseService(purchaseRepo repository.PurchaseRepository, availability AvailabilityCache, lists ListInvalidator) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		availability: availability,
		lists:        lists,
	}
}

// ProcessPurchase validates the cart and commits it in a single transaction.
// Failures are returned unretried; the caller decides whether to resubmit.
func (s *purchaseService) ProcessPurchase(ctx context.Context, req *dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.process")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "nil request")
		return nil, fmt.Errorf("%w: empty request", domain.ErrInvalidCart)
	}
	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCart, msg)
	}

	span.SetAttributes(
		attribute.Int64("user_id", req.UserID),
		attribute.Int("cart_items", len(req.Cart)),
		attribute.String("payment_method", req.PaymentMethod),
	)

	result, err := s.purchaseRepo.ProcessCart(ctx, req.UserID, req.PaymentMethod, req.CartItems())
	if err != nil {
		telemetry.RecordError(span, err)
		logger.Get().WithContext(ctx).Info("purchase rejected",
			zap.Int64("user_id", req.UserID),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64Slice("purchase_ids", result.PurchaseIDs),
		attribute.Float64("total_amount", result.TotalAmount),
	)

	s.refreshAfterCommit(ctx, req.CartItems())
	return dto.NewPurchaseResponse(result), nil
}

// refreshAfterCommit updates read caches; the purchase already committed so errors are only logged
func (s *purchaseService) refreshAfterCommit(ctx context.Context, items []domain.CartItem) {
	if s.lists != nil {
		s.lists.InvalidateLists(ctx)
	}
	if s.availability == nil {
		return
	}

	zoneIDs := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ZoneID]; ok {
			continue
		}
		seen[item.ZoneID] = struct{}{}
		zoneIDs = append(zoneIDs, item.ZoneID)
	}
	if err := s.availability.Refresh(ctx, zoneIDs...); err != nil {
		logger.Get().WithContext(ctx).Warn("failed to refresh zone availability",
			zap.Int64s("zone_ids", zoneIDs),
			zap.Error(err),
		)
	}
}

// GetPurchase retrieves a purchase with its joined data
func (s *purchaseService) GetPurchase(ctx context.Context, id int64) (*domain.PurchaseDetail, error) {
	return s.purchaseRepo.GetDetail(ctx, id)
}

// ListUserPurchases lists a user's purchase history with QR payloads
func (s *purchaseService) ListUserPurchases(ctx context.Context, userID int64) ([]*dto.PurchaseHistoryItem, error) {
	details, err := s.purchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PurchaseHistoryItem, 0, len(details))
	for _, d := range details {
		qr, err := json.Marshal(domain.QRPayloadFor(&d.Purchase))
		if err != nil {
			return nil, fmt.Errorf("failed to encode qr payload: %w", err)
		}
		items = append(items, dto.NewPurchaseHistoryItem(d, string(qr)))
	}
	return items, nil
}
