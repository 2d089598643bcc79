package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"roomdesk/internal/domain/booking"
	"roomdesk/internal/infra/db"
	"roomdesk/internal/infra/readstore"
	"roomdesk/internal/infra/repository"
	"roomdesk/internal/pkg/errs"
	"roomdesk/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted is enough here: the capacity gate takes its own row lock, so
// a stricter isolation level would only add retry pressure.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return newCommandReads(u.pool)
}

// The loop opens and closes the transaction explicitly per attempt instead
// of deferring, so a retried attempt never leaks its connection.
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := u.attempt(ctx, options, fn)
		if err == nil {
			return nil
		}

		if !retryable(err) {
			return err
		}
		if attempt == maxRetries {
			slog.Error("transaction failed after max retries",
				"attempts", attempt+1, "error", err.Error())
			return errs.Mark(err, errMaxRetriesExceeded)
		}

		wait := backoff(attempt)
		slog.Warn("retrying transaction",
			"attempt", attempt+1, "wait_ms", wait.Milliseconds(), "error", err.Error())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return errMaxRetriesExceeded
}

func (u *PostgresUoW) attempt(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	err = fn(ctx, &pgTx{dbtx: pgxTx})
	if err == nil {
		if err = pgxTx.Commit(ctx); err == nil {
			return nil
		}
		err = errs.Mark(err, errTransactionCommit)
	}

	if rbErr := pgxTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		slog.Warn("rollback failed", "error", rbErr.Error())
	}
	return err
}

// Exponential backoff with up to 20% jitter on top.
func backoff(attempt int) time.Duration {
	wait := time.Duration(1<<attempt) * 100 * time.Millisecond

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err == nil {
		if span := int64(wait / 5); span > 0 {
			jitter := int64(binary.BigEndian.Uint64(buf[:])&0x7FFFFFFFFFFFFFFF) % span
			wait += time.Duration(jitter)
		}
	}
	return wait
}

// Serialization failures and deadlocks are safe to rerun; everything else
// surfaces to the caller.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgErrCodeSerializationFailure || pgErr.Code == pgErrCodeDeadlockDetected
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized collaborators
	bookingRepo  shared.BookingRepository
	commandReads shared.CommandReads
}

func (t *pgTx) Bookings() shared.BookingRepository {
	if t.bookingRepo == nil {
		t.bookingRepo = repository.NewBookingRepository(t.dbtx)
	}
	return t.bookingRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = newCommandReads(t.dbtx)
	}
	return t.commandReads
}

// commandReads adapts the per-entity read stores to the single interface the
// rule engine consumes. Stores are lazy so a gate that short-circuits early
// never constructs the rest.
type commandReads struct {
	dbtx db.DBTX

	enrollmentStore *readstore.EnrollmentReadStore
	roomStore       *readstore.RoomReadStore
	bookingStore    *readstore.BookingReadStore
}

func newCommandReads(dbtx db.DBTX) *commandReads {
	return &commandReads{dbtx: dbtx}
}

func (r *commandReads) EnrollmentByUserID(ctx context.Context, userID int64) (*booking.Enrollment, error) {
	if r.enrollmentStore == nil {
		r.enrollmentStore = readstore.NewEnrollmentReadStore(r.dbtx)
	}
	return r.enrollmentStore.FindByUserID(ctx, userID)
}

func (r *commandReads) TicketByEnrollmentID(ctx context.Context, enrollmentID int64) (*booking.Ticket, error) {
	if r.enrollmentStore == nil {
		r.enrollmentStore = readstore.NewEnrollmentReadStore(r.dbtx)
	}
	return r.enrollmentStore.FindTicketByEnrollmentID(ctx, enrollmentID)
}

func (r *commandReads) RoomByID(ctx context.Context, roomID int64) (*booking.Room, error) {
	if r.roomStore == nil {
		r.roomStore = readstore.NewRoomReadStore(r.dbtx)
	}
	return r.roomStore.FindByID(ctx, roomID)
}

func (r *commandReads) BookingByID(ctx context.Context, bookingID int64) (*booking.Booking, error) {
	if r.bookingStore == nil {
		r.bookingStore = readstore.NewBookingReadStore(r.dbtx)
	}
	return r.bookingStore.FindByID(ctx, bookingID)
}

func (r *commandReads) BookingByUserID(ctx context.Context, userID int64) (*booking.Booking, error) {
	if r.bookingStore == nil {
		r.bookingStore = readstore.NewBookingReadStore(r.dbtx)
	}
	return r.bookingStore.FindByUserID(ctx, userID)
}

func (r *commandReads) CountBookingsByRoom(ctx context.Context, roomID int64) (int64, error) {
	if r.bookingStore == nil {
		r.bookingStore = readstore.NewBookingReadStore(r.dbtx)
	}
	return r.bookingStore.CountByRoom(ctx, roomID)
}
