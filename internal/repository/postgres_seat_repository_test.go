package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lockSeatSQL   = regexp.QuoteMeta(`SELECT zone_id, row_number, seat_number, status`)
	updateSeatSQL = regexp.QuoteMeta(`UPDATE seats SET status = $2, updated_at = NOW() WHERE id = $1`)
)

func seatRow(status string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"zone_id", "row_number", "seat_number", "status"}).
		AddRow(int64(5), 1, 4, status)
}

func newSeatRepo(t *testing.T) (*PostgresSeatRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresSeatRepository(mock, NewPostgresOutboxRepository(mock, "ticketing-events")), mock
}

func TestSeatUpdateStatus_Reserve(t *testing.T) {
	repo, mock := newSeatRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockSeatSQL).WithArgs(int64(42)).WillReturnRows(seatRow("available"))
	mock.ExpectExec(updateSeatSQL).WithArgs(int64(42), "reserved").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(insertOutbox).WithArgs(outboxArgs()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	seat, previous, err := repo.UpdateStatus(context.Background(), 42, domain.SeatStatusReserved)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatStatusAvailable, previous)
	assert.Equal(t, domain.SeatStatusReserved, seat.Status)
	assert.Equal(t, int64(5), seat.ZoneID)
	assert.Equal(t, 4, seat.SeatNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatUpdateStatus_SameStatusIsNoop(t *testing.T) {
	repo, mock := newSeatRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockSeatSQL).WithArgs(int64(42)).WillReturnRows(seatRow("reserved"))
	mock.ExpectRollback()

	seat, previous, err := repo.UpdateStatus(context.Background(), 42, domain.SeatStatusReserved)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatStatusReserved, previous)
	assert.Equal(t, domain.SeatStatusReserved, seat.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatUpdateStatus_SoldSeat(t *testing.T) {
	repo, mock := newSeatRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockSeatSQL).WithArgs(int64(42)).WillReturnRows(seatRow("sold"))
	mock.ExpectRollback()

	_, _, err := repo.UpdateStatus(context.Background(), 42, domain.SeatStatusAvailable)
	assert.ErrorIs(t, err, domain.ErrSeatAlreadySold)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatUpdateStatus_NotFound(t *testing.T) {
	repo, mock := newSeatRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockSeatSQL).WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"zone_id", "row_number", "seat_number", "status"}))
	mock.ExpectRollback()

	_, _, err := repo.UpdateStatus(context.Background(), 404, domain.SeatStatusReserved)
	assert.ErrorIs(t, err, domain.ErrSeatNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatUpdateStatus_RejectsInvalidTarget(t *testing.T) {
	repo, mock := newSeatRepo(t)

	for _, status := range []domain.SeatStatus{domain.SeatStatusSold, "broken"} {
		_, _, err := repo.UpdateStatus(context.Background(), 42, status)
		assert.ErrorIs(t, err, domain.ErrInvalidSeatStatus)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
