//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"roomdesk/cmd/bootstrap"
	"roomdesk/cmd/bootstrap/components"
	"roomdesk/internal/infra/db"
	"roomdesk/internal/pkg/config"
	"roomdesk/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
	pgPort     = "5432/tcp"
)

// One postgres container is shared by the whole process; every test package
// carves out its own uuid-named database inside it so packages can run in
// parallel without stepping on each other's rows.
var (
	containerOnce sync.Once
	pgContainer   testcontainers.Container
)

// SharedSuite wires a real router against a dedicated database. Suites embed
// it and get a truncated, reseeded schema before every subtest.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()

	host, port := sharedPostgres(t)
	pool, dbCfg := newIsolatedDatabase(t, host, port)

	router, cfg, app := buildApp(pool, dbCfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("failed to stop fx application", "error", err.Error())
		}
	})

	s.DB = pool
	s.Router = router
	s.Config = cfg
}

func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "failed to reset database state")
}

// sharedPostgres starts the process-wide container on first use and returns
// its mapped address.
func sharedPostgres(t *testing.T) (string, nat.Port) {
	gin.SetMode(gin.TestMode)

	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
		defer cancel()

		var err error
		pgContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:17",
				ExposedPorts: []string{pgPort},
				Env: map[string]string{
					"POSTGRES_USER":     pgUser,
					"POSTGRES_PASSWORD": pgPassword,
					"POSTGRES_DB":       "postgres",
				},
				Tmpfs: map[string]string{
					"/var/lib/postgresql/data": "rw,size=512m", // keep data in RAM
				},
				Cmd: []string{
					"postgres",
					"-c", "fsync=off", // durability traded for test speed
					"-c", "full_page_writes=off",
					"-c", "synchronous_commit=off",
					"-c", "shared_buffers=256MB",
					"-c", "max_connections=200",
					"-c", "log_statement=none",
				},
				WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
					return adminDSN(host, port)
				}).WithStartupTimeout(60 * time.Second),
				Name:   "roomdesk-e2e-postgres",
				Labels: map[string]string{"purpose": "e2e-tests"},
			},
		})
		require.NoError(t, err, "failed to start postgres container")

		t.Cleanup(func() {
			if pgContainer == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := pgContainer.Terminate(ctx); err != nil {
				slog.Warn("failed to terminate postgres container", "error", err.Error())
			}
		})
	})

	ctx := context.Background()
	port, err := pgContainer.MappedPort(ctx, nat.Port(pgPort))
	require.NoError(t, err, "failed to read mapped postgres port")
	host, err := pgContainer.Host(ctx)
	require.NoError(t, err, "failed to read postgres host")
	return host, port
}

func adminDSN(host string, port nat.Port) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		pgUser, pgPassword, host, port.Port())
}

// newIsolatedDatabase creates a throwaway database in the shared container,
// runs the schema into it, seeds the ticket-type catalog, and returns a pool
// bound to it. The database is dropped on cleanup.
func newIsolatedDatabase(t *testing.T, host string, port nat.Port) (*pgxpool.Pool, config.DBConfig) {
	dbName := "roomdesk_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, adminDSN(host, port))
	require.NoError(t, err, "admin connection failed")
	defer admin.Close()

	// CREATE DATABASE can hit transient lock conflicts while parallel
	// packages spin up, so retry a few times.
	var createErr error
	for attempt := range 5 {
		if attempt > 0 {
			time.Sleep(time.Duration(500*(attempt+1)) * time.Millisecond)
			slog.Warn("retrying database creation", "attempt", attempt+1, "error", createErr.Error())
		}
		if _, createErr = admin.Exec(ctx, "CREATE DATABASE "+dbName); createErr == nil {
			break
		}
	}
	require.NoError(t, createErr, "failed to create test database")

	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dropCancel()

		dropPool, err := pgxpool.New(dropCtx, adminDSN(host, port))
		if err != nil {
			slog.Warn("failed to open cleanup connection", "database", dbName, "error", err.Error())
			return
		}
		defer dropPool.Close()
		if _, err := dropPool.Exec(dropCtx, "DROP DATABASE IF EXISTS "+dbName); err != nil {
			slog.Warn("failed to drop test database", "database", dbName, "error", err.Error())
		}
	})

	dbCfg := config.DBConfig{
		Host:     host,
		Port:     port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	pool, _, err := db.Connect(dbCfg)
	require.NoError(t, err, "database connection failed")
	t.Cleanup(pool.Close)

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer migrateCancel()
	require.NoError(t, applySchema(migrateCtx, pool), "schema migration failed")
	require.NoError(t, dbtest.SeedReferenceData(pool), "failed to seed reference data")

	return pool, dbCfg
}

// applySchema executes the migration files as plain SQL. Test packages run
// with their own working directory, so the repo root is located by walking
// upward until migrations/ appears.
func applySchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := findRepoRoot()
	if err != nil {
		return err
	}

	files := []string{"001_initial_schema.sql"}
	for _, name := range files {
		path := filepath.Join(root, "migrations", name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", path, err)
		}
		if _, err := pool.Exec(ctx, string(raw)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		slog.Info("migration applied", "file", name)
	}
	return nil
}

func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "migrations")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found above %s", dir)
		}
		dir = parent
	}
}

// buildApp assembles the production fx graph with the test database and
// config substituted in. fx.Populate extracts the router without starting
// an HTTP listener.
func buildApp(pool *pgxpool.Pool, dbCfg config.DBConfig) (*gin.Engine, config.Config, *fx.App) {
	var (
		router *gin.Engine
		cfg    config.Config
	)

	app := fx.New(
		fx.Module("testdb", fx.Provide(func() *pgxpool.Pool { return pool })),
		fx.Module("testconfig", fx.Provide(func() config.Config {
			c := config.NewTestConfig()
			c.DB = dbCfg
			return c
		})),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.JWTModule,
		components.PersistenceModule,
		components.UseCaseModule,
		components.HandlerModule,

		fx.Populate(&router, &cfg),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		panic(fmt.Sprintf("failed to start fx app: %v", err))
	}
	if router == nil {
		panic("router was not populated")
	}
	return router, cfg, app
}
