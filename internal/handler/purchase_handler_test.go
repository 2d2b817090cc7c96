package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
)

const cartBody = `{"userId": %d, "paymentMethod": "card", "cart": [{"zoneId": 7, "seatId": 70, "quantity": 1, "extraPrice": 50}]}`

func TestPurchaseHandler_Create_Success(t *testing.T) {
	env := newTestEnv(t)
	env.purchases.On("ProcessPurchase", mock.Anything, mock.MatchedBy(func(req *dto.PurchaseRequest) bool {
		return req.UserID == 5 && len(req.Cart) == 1 && req.Cart[0].SeatID == 70
	})).Return(&dto.PurchaseResponse{
		TicketID: 11, SeatID: 70, ZoneID: 7, UserID: 5, EventID: 1,
		PurchaseIDs: []int64{11}, TotalAmount: 50,
	}, nil)

	w := env.doJSON(http.MethodPost, "/api/v1/purchases", tokenFor(t, 5, domain.RoleStandard), fmt.Sprintf(cartBody, 5))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got dto.PurchaseResponse
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &got))
	assert.Equal(t, []int64{11}, got.PurchaseIDs)
	assert.Equal(t, int64(11), got.TicketID)
	env.purchases.AssertExpectations(t)
}

func TestPurchaseHandler_Create_DefaultsUserFromToken(t *testing.T) {
	env := newTestEnv(t)
	env.purchases.On("ProcessPurchase", mock.Anything, mock.MatchedBy(func(req *dto.PurchaseRequest) bool {
		return req.UserID == 9
	})).Return(&dto.PurchaseResponse{TicketID: 1, UserID: 9, PurchaseIDs: []int64{1}}, nil)

	w := env.doJSON(http.MethodPost, "/api/v1/purchases", tokenFor(t, 9, domain.RoleStandard), fmt.Sprintf(cartBody, 0))
	assert.Equal(t, http.StatusCreated, w.Code)
	env.purchases.AssertExpectations(t)
}

func TestPurchaseHandler_Create_IdentityMismatch(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(http.MethodPost, "/api/v1/purchases", tokenFor(t, 5, domain.RoleStandard), fmt.Sprintf(cartBody, 6))
	assert.Equal(t, http.StatusForbidden, w.Code)
	got := decode(t, w.Body.Bytes())
	assert.Equal(t, "FORBIDDEN", got.Error.Code)
	assert.Equal(t, purchaseFailedMessage, got.Error.Message)
	env.purchases.AssertNotCalled(t, "ProcessPurchase", mock.Anything, mock.Anything)
}

func TestPurchaseHandler_Create_AdminMayBuyForOthers(t *testing.T) {
	env := newTestEnv(t)
	env.purchases.On("ProcessPurchase", mock.Anything, mock.Anything).
		Return(&dto.PurchaseResponse{TicketID: 3, UserID: 6, PurchaseIDs: []int64{3}}, nil)

	w := env.doJSON(http.MethodPost, "/api/v1/purchases", tokenFor(t, 1, domain.RoleAdmin), fmt.Sprintf(cartBody, 6))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPurchaseHandler_Create_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails string
	}{
		{
			name:        "seat already sold",
			err:         fmt.Errorf("%w: %w", domain.ErrSeatUpdateFailed, domain.ErrSeatAlreadySold),
			wantStatus:  http.StatusConflict,
			wantCode:    "SEAT_ALREADY_SOLD",
			wantDetails: "seat update failed: seat already sold",
		},
		{
			name:        "seat missing",
			err:         fmt.Errorf("%w: %w", domain.ErrSeatUpdateFailed, domain.ErrSeatNotFound),
			wantStatus:  http.StatusNotFound,
			wantCode:    "SEAT_NOT_FOUND",
			wantDetails: "seat update failed: seat not found",
		},
		{
			name:       "insufficient capacity",
			err:        domain.ErrInsufficientCapacity,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INSUFFICIENT_CAPACITY",
		},
		{
			name:       "unknown user",
			err:        domain.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "USER_NOT_FOUND",
		},
		{
			name:        "commit failure",
			err:         fmt.Errorf("%w: commit: connection reset", domain.ErrTransactionFailure),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "TRANSACTION_FAILURE",
			wantDetails: "transaction failure",
		},
		{
			name:       "unclassified error hides details",
			err:        fmt.Errorf("failed to insert purchase: pq broke"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.purchases.On("ProcessPurchase", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := env.doJSON(http.MethodPost, "/api/v1/purchases", tokenFor(t, 5, domain.RoleStandard), fmt.Sprintf(cartBody, 5))
			assert.Equal(t, tt.wantStatus, w.Code)
			got := decode(t, w.Body.Bytes())
			assert.False(t, got.Success)
			assert.Equal(t, tt.wantCode, got.Error.Code)
			assert.Equal(t, purchaseFailedMessage, got.Error.Message)
			if tt.wantDetails != "" {
				assert.Equal(t, tt.wantDetails, got.Error.Details)
			}
			if tt.wantCode == "INTERNAL_ERROR" {
				assert.Empty(t, got.Error.Details)
			}
		})
	}
}

func TestPurchaseHandler_Create_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.doJSON(http.MethodPost, "/api/v1/purchases", "", fmt.Sprintf(cartBody, 5))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPurchaseHandler_Create_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	w := env.doJSON(http.MethodPost, "/api/v1/purchases", tokenFor(t, 5, domain.RoleStandard), `{"cart": "nope"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CART", decode(t, w.Body.Bytes()).Error.Code)
}

func TestPurchaseHandler_Ticket(t *testing.T) {
	env := newTestEnv(t)
	detail := &domain.PurchaseDetail{
		Purchase:   domain.Purchase{ID: 11, UserID: 5, EventID: 1, ZoneID: 7, SeatID: 70},
		EventTitle: "Concierto",
	}
	env.purchases.On("GetPurchase", mock.Anything, int64(11)).Return(detail, nil)
	env.purchases.On("GetPurchase", mock.Anything, int64(12)).Return(nil, domain.ErrPurchaseNotFound)
	env.tickets.On("RenderTicket", mock.Anything, detail).Return(nil)

	w := env.doJSON(http.MethodGet, "/api/v1/purchases/11/ticket", tokenFor(t, 5, domain.RoleStandard), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ticket-11.pdf")
	assert.True(t, len(w.Body.Bytes()) > 4 && string(w.Body.Bytes()[:5]) == "%PDF-")

	w = env.doJSON(http.MethodGet, "/api/v1/purchases/11/ticket", tokenFor(t, 6, domain.RoleStandard), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.doJSON(http.MethodGet, "/api/v1/purchases/11/ticket", tokenFor(t, 1, domain.RoleAdmin), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(http.MethodGet, "/api/v1/purchases/12/ticket", tokenFor(t, 5, domain.RoleStandard), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPurchaseHandler_UserPurchases(t *testing.T) {
	env := newTestEnv(t)
	items := []*dto.PurchaseHistoryItem{{TicketID: 11, EventTitle: "Concierto", Seat: "Fila 1, Asiento 1", QR: `{"ticketId":11}`}}
	env.purchases.On("ListUserPurchases", mock.Anything, int64(5)).Return(items, nil)

	w := env.doJSON(http.MethodGet, "/api/v1/users/5/purchases", tokenFor(t, 5, domain.RoleStandard), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []dto.PurchaseHistoryItem
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Fila 1, Asiento 1", got[0].Seat)

	w = env.doJSON(http.MethodGet, "/api/v1/users/5/purchases", tokenFor(t, 6, domain.RoleStandard), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.doJSON(http.MethodGet, "/api/v1/users/5/purchases", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
