package api

import (
	"net/http"

	resdto "roomdesk/internal/handler/dto/response"
	"roomdesk/internal/handler/httperr"
	"roomdesk/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomQueries queries.RoomQueries
}

func NewRoomHandler(roomQueries queries.RoomQueries) *RoomHandler {
	return &RoomHandler{roomQueries: roomQueries}
}

// @Summary List rooms
// @Description Browse bookable rooms with their current occupancy
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.RoomListResponse
// @Failure 401 {object} map[string]string
// @Router /rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	summaries, err := h.roomQueries.List(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromRoomSummaries(summaries))
}
