package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/gig-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/gig-escrow/internal/service"
)

// GigHandler обслуживает заказы.
type GigHandler struct {
	gigs *service.GigService
}

// NewGigHandler создаёт хэндлер заказов.
func NewGigHandler(gigs *service.GigService) *GigHandler {
	return &GigHandler{gigs: gigs}
}

// CreateGigRequest - тело POST /gigs.
type CreateGigRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Budget      decimal.Decimal `json:"budget"`
	DeadlineAt  *time.Time      `json:"deadline_at"`
}

// ListOpen обрабатывает GET /gigs.
func (h *GigHandler) ListOpen(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	gigs, err := h.gigs.ListOpenGigs(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gigs})
}

// Create обрабатывает POST /gigs.
func (h *GigHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req CreateGigRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	gig, err := h.gigs.CreateGig(c.Request.Context(), service.CreateGigInput{
		ClientID:    userID,
		Role:        common.CurrentUserRole(c),
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		DeadlineAt:  req.DeadlineAt,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gig)
}

// Get обрабатывает GET /gigs/:id.
func (h *GigHandler) Get(c *gin.Context) {
	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	gig, err := h.gigs.GetGig(c.Request.Context(), gigID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gig)
}

// ListMine обрабатывает GET /me/gigs.
func (h *GigHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	gigs, err := h.gigs.ListMyGigs(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gigs})
}
