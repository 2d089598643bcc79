//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"roomdesk/internal/pkg/password"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is satisfied by *pgxpool.Pool and pgx.Tx, so fixtures can run
// either directly against the test database or inside a transaction.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const TestUserPassword = "password123"

var (
	hashOnce     sync.Once
	passwordHash string
)

// bcrypt is slow, so every test user shares one hash
func testPasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		var err error
		passwordHash, err = password.HashPassword(TestUserPassword)
		require.NoError(t, err)
	})
	return passwordHash
}

func CreateTestUser(t *testing.T, db DBLike, email string) int64 {
	t.Helper()

	ctx := context.Background()
	var userID int64
	err := db.QueryRow(ctx,
		"INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id",
		email, testPasswordHash(t)).Scan(&userID)
	require.NoError(t, err)
	return userID
}

func CreateEnrollment(t *testing.T, db DBLike, userID int64, address string) int64 {
	t.Helper()

	ctx := context.Background()
	var enrollmentID int64
	err := db.QueryRow(ctx,
		"INSERT INTO enrollments (user_id, address) VALUES ($1, $2) RETURNING id",
		userID, address).Scan(&enrollmentID)
	require.NoError(t, err)
	return enrollmentID
}

func CreateTicket(t *testing.T, db DBLike, enrollmentID int64, ticketTypeName, status string) int64 {
	t.Helper()

	ctx := context.Background()
	var ticketID int64
	err := db.QueryRow(ctx, `
		INSERT INTO tickets (enrollment_id, ticket_type_id, status)
		SELECT $1, id, $3 FROM ticket_types WHERE name = $2
		RETURNING id`,
		enrollmentID, ticketTypeName, status).Scan(&ticketID)
	require.NoError(t, err)
	return ticketID
}

func CreateHotel(t *testing.T, db DBLike, name string) int64 {
	t.Helper()

	ctx := context.Background()
	var hotelID int64
	err := db.QueryRow(ctx,
		"INSERT INTO hotels (name) VALUES ($1) RETURNING id", name).Scan(&hotelID)
	require.NoError(t, err)
	return hotelID
}

func CreateRoom(t *testing.T, db DBLike, hotelID int64, name string, capacity int32) int64 {
	t.Helper()

	ctx := context.Background()
	var roomID int64
	err := db.QueryRow(ctx,
		"INSERT INTO rooms (hotel_id, name, capacity) VALUES ($1, $2, $3) RETURNING id",
		hotelID, name, capacity).Scan(&roomID)
	require.NoError(t, err)
	return roomID
}

func CreateBooking(t *testing.T, db DBLike, userID, roomID int64) int64 {
	t.Helper()

	ctx := context.Background()
	var bookingID int64
	err := db.QueryRow(ctx,
		"INSERT INTO bookings (user_id, room_id) VALUES ($1, $2) RETURNING id",
		userID, roomID).Scan(&bookingID)
	require.NoError(t, err)
	return bookingID
}

// inserts the ticket type catalog needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO ticket_types (name, is_remote, includes_hotel) VALUES
		    ('in-person-hotel', false, true),
		    ('in-person-only', false, false),
		    ('remote', true, false),
		    ('remote-hotel', true, true)
		ON CONFLICT (name) DO NOTHING;
	`)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
