package api

import (
	"errors"
	"net/http"
	"strconv"

	"roomdesk/internal/domain/booking"
	reqdto "roomdesk/internal/handler/dto/request"
	resdto "roomdesk/internal/handler/dto/response"
	"roomdesk/internal/handler/httperr"
	"roomdesk/internal/handler/middleware"
	"roomdesk/internal/usecase/commands"
	"roomdesk/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
	}
}

// @Summary Get own booking
// @Description Return the caller's current hotel booking with its room
// @Tags booking
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /booking [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	view, err := h.bookingQueries.GetOwn(c.Request.Context(), userID)
	if err != nil {
		h.abortWithBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Create booking
// @Description Book a room for the caller
// @Tags booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 200 {object} resdto.BookingIDResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /booking [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	bookingID, err := h.bookingCommands.Create(c.Request.Context(), userID, req.RoomID)
	if err != nil {
		h.abortWithBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.BookingIDResponse{BookingID: bookingID})
}

// @Summary Move booking to another room
// @Description Change the room of the caller's existing booking
// @Tags booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookingId path int true "Booking ID"
// @Param request body reqdto.UpdateBookingRequest true "Target room"
// @Success 200 {object} resdto.BookingIDResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /booking/{bookingId} [put]
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// A non-numeric path segment parses to zero and is denied by the rule
	// engine like any other malformed id.
	bookingID, _ := strconv.ParseInt(c.Param("bookingId"), 10, 64)

	var req reqdto.UpdateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resultID, err := h.bookingCommands.ChangeRoom(c.Request.Context(), userID, bookingID, req.RoomID)
	if err != nil {
		h.abortWithBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.BookingIDResponse{BookingID: resultID})
}

// The rule engine exposes exactly two failure kinds; anything else is an
// internal error.
func (h *BookingHandler) abortWithBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrBookingDenied):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Booking denied", nil)
	case errors.Is(err, booking.ErrNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
