package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/gig-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/gig-escrow/internal/service"
)

// ProposalHandler обслуживает отклики и их принятие.
type ProposalHandler struct {
	proposals *service.ProposalService
	escrow    *service.EscrowService
}

// NewProposalHandler создаёт хэндлер предложений.
func NewProposalHandler(proposals *service.ProposalService, escrow *service.EscrowService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, escrow: escrow}
}

// SubmitProposalRequest - тело POST /gigs/:id/proposals.
type SubmitProposalRequest struct {
	CoverLetter    string          `json:"cover_letter" binding:"required"`
	ProposedAmount decimal.Decimal `json:"proposed_amount"`
	DeliveryDays   int             `json:"delivery_days" binding:"required"`
}

// Submit обрабатывает POST /gigs/:id/proposals.
func (h *ProposalHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req SubmitProposalRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	proposal, err := h.proposals.SubmitProposal(c.Request.Context(), service.SubmitProposalInput{
		GigID:          gigID,
		FreelancerID:   userID,
		Role:           common.CurrentUserRole(c),
		CoverLetter:    req.CoverLetter,
		ProposedAmount: req.ProposedAmount,
		DeliveryDays:   req.DeliveryDays,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, proposal)
}

// List обрабатывает GET /gigs/:id/proposals.
func (h *ProposalHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	proposals, err := h.proposals.ListProposals(c.Request.Context(), gigID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": proposals})
}

// ListMine обрабатывает GET /me/proposals.
func (h *ProposalHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	proposals, err := h.proposals.ListMyProposals(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": proposals})
}

// Accept обрабатывает POST /gigs/:id/proposals/:proposalId/accept.
func (h *ProposalHandler) Accept(c *gin.Context) {
	userID, gigID, proposalID, ok := h.proposalTarget(c)
	if !ok {
		return
	}

	result, err := h.escrow.AcceptProposal(c.Request.Context(), gigID, proposalID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Reject обрабатывает POST /gigs/:id/proposals/:proposalId/reject.
func (h *ProposalHandler) Reject(c *gin.Context) {
	userID, gigID, proposalID, ok := h.proposalTarget(c)
	if !ok {
		return
	}

	proposal, err := h.proposals.RejectProposal(c.Request.Context(), gigID, proposalID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}

func (h *ProposalHandler) proposalTarget(c *gin.Context) (userID, gigID, proposalID uuid.UUID, ok bool) {
	var err error
	if userID, err = common.CurrentUserID(c); err != nil {
		_ = c.Error(err)
		return
	}
	if gigID, err = common.ParseUUIDParam(c, "id"); err != nil {
		_ = c.Error(err)
		return
	}
	if proposalID, err = common.ParseUUIDParam(c, "proposalId"); err != nil {
		_ = c.Error(err)
		return
	}
	return userID, gigID, proposalID, true
}
