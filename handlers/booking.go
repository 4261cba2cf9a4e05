package handlers

import (
	"errors"
	"net/http"

	"medibook/services/session"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the booking form and confirmation endpoint.
type BookingHandler struct {
	sessions *session.Manager
}

func NewBookingHandler(sessions *session.Manager) *BookingHandler {
	return &BookingHandler{sessions: sessions}
}

// ShowForm renders the booking form pre-filled with whatever the
// session has collected so far, complete or not.
func (h *BookingHandler) ShowForm(c *gin.Context) {
	token := SessionToken(c)

	snap, err := h.sessions.Snapshot(c.Request.Context(), token)
	if err != nil {
		// Unknown session degrades to an empty form.
		c.HTML(http.StatusOK, "booking_form.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "booking_form.html", gin.H{
		"name":          snap.Record.Name,
		"phone":         snap.Record.Phone,
		"email":         snap.Record.Email,
		"preferredDate": snap.Record.PreferredDate,
		"preferredTime": snap.Record.PreferredTime,
		"reason":        snap.Record.Reason,
		"state":         snap.State,
	})
}

// Confirm handles POST /book/confirm. Confirming before the record is
// complete is a reported no-op, not an error.
func (h *BookingHandler) Confirm(c *gin.Context) {
	logger := utils.GetLogger()
	token := SessionToken(c)

	sess, err := h.sessions.ConfirmBooking(c.Request.Context(), token)
	if errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrNotReady) {
		missing := h.sessions.MissingFields(c.Request.Context(), token)
		c.JSON(http.StatusConflict, gin.H{
			"confirmed": false,
			"message":   "Your booking details are not complete yet.",
			"missing":   missing,
		})
		return
	}
	if err != nil {
		logger.Error("Booking confirmation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Booking confirmation failed", "Please try again.")
		return
	}

	logger.Info("Booking confirmed",
		zap.String("name", sess.Record.Name),
		zap.String("date", sess.Record.PreferredDate),
		zap.String("time", sess.Record.PreferredTime))

	c.JSON(http.StatusOK, gin.H{
		"confirmed": true,
		"record":    sess.Record,
	})
}
