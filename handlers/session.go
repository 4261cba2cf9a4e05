package handlers

import (
	"errors"
	"net/http"

	"medibook/config"
	"medibook/models"
	"medibook/services/session"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionTokenKey = "sessionToken"

// SessionToken returns the opaque session token minted by the session
// middleware for this request.
func SessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}

// SessionHandler exposes session inspection and reset.
type SessionHandler struct {
	sessions *session.Manager
}

func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Snapshot handles GET /session: a read-only view of the current
// record and state, for debugging and inspection.
func (h *SessionHandler) Snapshot(c *gin.Context) {
	token := SessionToken(c)

	snap, err := h.sessions.Snapshot(c.Request.Context(), token)
	if errors.Is(err, session.ErrNoSession) {
		// An unknown token is equivalent to a fresh collecting session.
		c.JSON(http.StatusOK, models.SessionSnapshot{
			Token:   token,
			State:   models.StateCollecting,
			Missing: h.sessions.Required(),
		})
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load session", err.Error())
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Logout handles POST /logout: clears the booking record and expires
// the session cookie.
func (h *SessionHandler) Logout(c *gin.Context) {
	logger := utils.GetLogger()
	token := SessionToken(c)

	if err := h.sessions.Clear(c.Request.Context(), token); err != nil {
		logger.Error("Failed to clear session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to clear session", "Please try again.")
		return
	}

	c.SetCookie(config.AppConfig.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Session cleared!"})
}
