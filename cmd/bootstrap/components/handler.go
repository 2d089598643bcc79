package components

import (
	"roomdesk/internal/handler"
	"roomdesk/internal/handler/api"
	"roomdesk/internal/handler/middleware"
	"roomdesk/internal/pkg/jwt"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewRoomHandler,
		newTokenValidator,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func newTokenValidator(s *jwt.Service) middleware.TokenValidator {
	return s
}
