package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gig-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/gig-escrow/internal/service"
)

// ContractHandler обслуживает контракты: сдачу, приёмку, отмену и файлы.
type ContractHandler struct {
	contracts *service.ContractService
	escrow    *service.EscrowService
}

// NewContractHandler создаёт хэндлер контрактов.
func NewContractHandler(contracts *service.ContractService, escrow *service.EscrowService) *ContractHandler {
	return &ContractHandler{contracts: contracts, escrow: escrow}
}

// SubmitWorkRequest - тело POST /contracts/:id/submit.
type SubmitWorkRequest struct {
	Message string  `json:"message" binding:"required"`
	FileURL *string `json:"file_url"`
}

// ApproveWorkRequest - тело POST /contracts/:id/approve. Оценка необязательна.
type ApproveWorkRequest struct {
	Rating *int `json:"rating"`
}

// List обрабатывает GET /contracts?status=&excludeStatus=.
func (h *ContractHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	contracts, err := h.contracts.ListContracts(c.Request.Context(), userID, c.Query("status"), c.Query("excludeStatus"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": contracts})
}

// Get обрабатывает GET /contracts/:id.
func (h *ContractHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	view, err := h.contracts.GetContract(c.Request.Context(), contractID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetByGig обрабатывает GET /gigs/:id/contract.
func (h *ContractHandler) GetByGig(c *gin.Context) {
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

	view, err := h.contracts.GetGigContract(c.Request.Context(), gigID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit обрабатывает POST /contracts/:id/submit.
func (h *ContractHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req SubmitWorkRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	contract, err := h.contracts.SubmitWork(c.Request.Context(), service.SubmitWorkInput{
		ContractID:   contractID,
		FreelancerID: userID,
		Message:      req.Message,
		FileURL:      req.FileURL,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// Approve обрабатывает POST /contracts/:id/approve.
func (h *ContractHandler) Approve(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req ApproveWorkRequest
	// Тело необязательно: приёмка без оценки.
	if c.Request.ContentLength != 0 {
		if err := common.BindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}
	}

	result, err := h.escrow.ApproveWork(c.Request.Context(), contractID, userID, req.Rating)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cancel обрабатывает POST /contracts/:id/cancel.
func (h *ContractHandler) Cancel(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.escrow.CancelContract(c.Request.Context(), contractID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadDeliverable обрабатывает POST /contracts/:id/deliverables (multipart, поле file).
func (h *ContractHandler) UploadDeliverable(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = c.Error(apperror.Validation("файл слишком большой"))
			return
		}
		_ = c.Error(apperror.New(apperror.ErrCodeBadRequest, "файл обязателен"))
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	defer file.Close()

	stored, err := h.contracts.UploadDeliverable(c.Request.Context(), contractID, userID, file)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}
