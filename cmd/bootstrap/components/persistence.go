package components

import (
	"roomdesk/internal/infra/db"
	"roomdesk/internal/infra/readstore"
	"roomdesk/internal/infra/uow"
	"roomdesk/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// UnitOfWork
		uow.NewPostgresUoW,
		// Pool-backed read stores for the query side
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			readstore.NewRoomReadStore,
			fx.As(new(queries.RoomReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
