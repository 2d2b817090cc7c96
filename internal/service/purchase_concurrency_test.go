package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
)

// seatLedger applies carts the way the postgres repository does: the zone is
// locked for the whole cart and each seat moves only from available to sold.
type seatLedger struct {
	mu       sync.Mutex
	capacity map[int64]int
	seats    map[int64]domain.SeatStatus
	nextID   int64
}

func (l *seatLedger) ProcessCart(ctx context.Context, userID int64, paymentMethod string, items []domain.CartItem) (*domain.PurchaseResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	capacity := make(map[int64]int, len(l.capacity))
	for k, v := range l.capacity {
		capacity[k] = v
	}
	seats := make(map[int64]domain.SeatStatus, len(l.seats))
	for k, v := range l.seats {
		seats[k] = v
	}

	res := &domain.PurchaseResult{UserID: userID}
	for _, item := range items {
		if capacity[item.ZoneID] < item.Quantity {
			return nil, domain.ErrInsufficientCapacity
		}
		switch seats[item.SeatID] {
		case domain.SeatStatusAvailable:
		case domain.SeatStatusReserved:
			return nil, fmt.Errorf("%w: %w", domain.ErrSeatUpdateFailed, domain.ErrSeatHeld)
		default:
			return nil, fmt.Errorf("%w: %w", domain.ErrSeatUpdateFailed, domain.ErrSeatAlreadySold)
		}
		seats[item.SeatID] = domain.SeatStatusSold
		capacity[item.ZoneID] -= item.Quantity

		l.nextID++
		res.PurchaseIDs = append(res.PurchaseIDs, l.nextID)
		res.TicketID = l.nextID
		res.SeatID = item.SeatID
		res.ZoneID = item.ZoneID
		res.TotalAmount += item.Total()
	}

	l.capacity = capacity
	l.seats = seats
	return res, nil
}

func (l *seatLedger) GetDetail(ctx context.Context, id int64) (*domain.PurchaseDetail, error) {
	return nil, domain.ErrPurchaseNotFound
}

func (l *seatLedger) ListByUser(ctx context.Context, userID int64) ([]*domain.PurchaseDetail, error) {
	return nil, nil
}

func TestPurchaseService_ConcurrentBuyersOneSeat(t *testing.T) {
	ledger := &seatLedger{
		capacity: map[int64]int{5: 10},
		seats:    map[int64]domain.SeatStatus{42: domain.SeatStatusAvailable},
	}
	svc := NewPurchaseService(ledger, nil, nil)

	const buyers = 20
	var (
		wg      sync.WaitGroup
		sold    atomic.Int32
		rejects atomic.Int32
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := svc.ProcessPurchase(context.Background(), &dto.PurchaseRequest{
				Cart:          []dto.CartItemRequest{{ZoneID: 5, SeatID: 42, Quantity: 1}},
				UserID:        userID,
				PaymentMethod: "card",
			})
			if err == nil {
				sold.Add(1)
				return
			}
			if errors.Is(err, domain.ErrSeatAlreadySold) {
				rejects.Add(1)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, int32(1), sold.Load(), "seat sold exactly once")
	assert.Equal(t, int32(buyers-1), rejects.Load())
	assert.Equal(t, 9, ledger.capacity[5])
	assert.Equal(t, domain.SeatStatusSold, ledger.seats[42])
}

func TestPurchaseService_HeldSeatRejected(t *testing.T) {
	ledger := &seatLedger{
		capacity: map[int64]int{5: 10},
		seats: map[int64]domain.SeatStatus{
			41: domain.SeatStatusAvailable,
			42: domain.SeatStatusReserved,
		},
	}
	svc := NewPurchaseService(ledger, nil, nil)

	_, err := svc.ProcessPurchase(context.Background(), &dto.PurchaseRequest{
		Cart: []dto.CartItemRequest{
			{ZoneID: 5, SeatID: 41, Quantity: 1},
			{ZoneID: 5, SeatID: 42, Quantity: 1},
		},
		UserID:        7,
		PaymentMethod: "card",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSeatHeld)
	assert.Equal(t, domain.KindAlreadyProcessed, domain.KindOf(err))

	// the first item is not kept when the cart fails
	assert.Equal(t, domain.SeatStatusAvailable, ledger.seats[41])
	assert.Equal(t, 10, ledger.capacity[5])
}
