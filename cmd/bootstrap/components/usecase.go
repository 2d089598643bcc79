package components

import (
	"roomdesk/internal/usecase/commands"
	"roomdesk/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewRoomQueries,
	),
)
