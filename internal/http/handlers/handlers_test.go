package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gig-escrow/internal/http/middleware"
	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/repository"
	"github.com/ignatzorin/gig-escrow/internal/service"
	"github.com/ignatzorin/gig-escrow/internal/ws"
)

// newTestRouter собирает gin с обработчиком ошибок. Если userID задан,
// он кладётся в контекст так же, как это делает AuthMiddleware.
func newTestRouter(userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	if userID != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserIDKey, *userID)
			c.Set(middleware.ContextRoleKey, models.RoleClient)
			c.Next()
		})
	}
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestContractHandler_Submit_Unauthorized(t *testing.T) {
	r := newTestRouter(nil)
	handler := &ContractHandler{contracts: nil}
	r.POST("/contracts/:id/submit", handler.Submit)

	req, _ := http.NewRequest("POST", "/contracts/"+uuid.NewString()+"/submit", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", string(decodeError(t, w).Code))
}

func TestContractHandler_Get_InvalidID(t *testing.T) {
	userID := uuid.New()
	r := newTestRouter(&userID)
	handler := &ContractHandler{contracts: nil}
	r.GET("/contracts/:id", handler.Get)

	req, _ := http.NewRequest("GET", "/contracts/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContractHandler_Submit_InvalidBody(t *testing.T) {
	userID := uuid.New()
	r := newTestRouter(&userID)
	handler := &ContractHandler{contracts: nil}
	r.POST("/contracts/:id/submit", handler.Submit)

	req, _ := http.NewRequest("POST", "/contracts/"+uuid.NewString()+"/submit", strings.NewReader(`{"file_url":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", string(decodeError(t, w).Code))
}

func TestProposalHandler_Accept_Unauthorized(t *testing.T) {
	r := newTestRouter(nil)
	handler := &ProposalHandler{proposals: nil, escrow: nil}
	r.POST("/gigs/:id/proposals/:proposalId/accept", handler.Accept)

	req, _ := http.NewRequest("POST", "/gigs/"+uuid.NewString()+"/proposals/"+uuid.NewString()+"/accept", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Register_InvalidRole(t *testing.T) {
	r := newTestRouter(nil)
	handler := &AuthHandler{auth: nil}
	r.POST("/auth/register", handler.Register)

	body := `{"name":"Ира","email":"ira@example.com","password":"Password1","role":"admin"}`
	req, _ := http.NewRequest("POST", "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// chatContracts и chatMessages - заглушки хранилища для ChatService.
type chatContracts struct {
	contract *models.Contract
}

func (c *chatContracts) GetByID(_ context.Context, id uuid.UUID) (*models.Contract, error) {
	if c.contract == nil || c.contract.ID != id {
		return nil, repository.ErrContractNotFound
	}
	return c.contract, nil
}

func (c *chatContracts) GetDetails(context.Context, uuid.UUID) (*models.ContractDetails, error) {
	return nil, repository.ErrContractNotFound
}

func (c *chatContracts) GetDetailsByGig(context.Context, uuid.UUID) (*models.ContractDetails, error) {
	return nil, repository.ErrContractNotFound
}

func (c *chatContracts) ListForUser(context.Context, uuid.UUID, models.ContractListFilter) ([]models.ContractDetails, error) {
	return nil, nil
}

func (c *chatContracts) IsParty(_ context.Context, contractID, userID uuid.UUID) (bool, error) {
	return c.contract != nil && c.contract.ID == contractID && c.contract.HasParty(userID), nil
}

type chatMessages struct {
	saved []models.ChatMessage
}

func (m *chatMessages) Create(_ context.Context, msg *models.ChatMessage) error {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	m.saved = append(m.saved, *msg)
	return nil
}

func (m *chatMessages) ListByContract(context.Context, uuid.UUID) ([]models.ChatMessage, error) {
	return m.saved, nil
}

func (m *chatMessages) MarkRead(context.Context, uuid.UUID, uuid.UUID, time.Time, time.Time) (int64, error) {
	return 0, nil
}

func (m *chatMessages) ListChats(context.Context, uuid.UUID) ([]models.ChatSummary, error) {
	return []models.ChatSummary{}, nil
}

func TestChatHandler_CreateMessage(t *testing.T) {
	contract := &models.Contract{ID: uuid.New(), ClientID: uuid.New(), FreelancerID: uuid.New()}
	messages := &chatMessages{}
	handler := NewChatHandler(service.NewChatService(&chatContracts{contract: contract}, messages))

	r := newTestRouter(&contract.ClientID)
	r.POST("/chats/messages", handler.CreateMessage)

	body := `{"contract_id":"` + contract.ID.String() + `","message":"Когда будет готово?"}`
	req, _ := http.NewRequest("POST", "/chats/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, contract.FreelancerID, msg.ReceiverID)
	assert.Len(t, messages.saved, 1)
}

func TestChatHandler_CreateMessage_NotParty(t *testing.T) {
	contract := &models.Contract{ID: uuid.New(), ClientID: uuid.New(), FreelancerID: uuid.New()}
	handler := NewChatHandler(service.NewChatService(&chatContracts{contract: contract}, &chatMessages{}))

	stranger := uuid.New()
	r := newTestRouter(&stranger)
	r.POST("/chats/messages", handler.CreateMessage)

	body := `{"contract_id":"` + contract.ID.String() + `","message":"привет"}`
	req, _ := http.NewRequest("POST", "/chats/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", string(decodeError(t, w).Code))
}

func TestChatHandler_ListMessages_HiddenFromStrangers(t *testing.T) {
	contract := &models.Contract{ID: uuid.New(), ClientID: uuid.New(), FreelancerID: uuid.New()}
	handler := NewChatHandler(service.NewChatService(&chatContracts{contract: contract}, &chatMessages{}))

	stranger := uuid.New()
	r := newTestRouter(&stranger)
	r.GET("/chats/:contractId/messages", handler.ListMessages)

	req, _ := http.NewRequest("GET", "/chats/"+contract.ID.String()+"/messages", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthHandler(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	handler := NewHealthHandler(sqlx.NewDb(db, "sqlmock"), nil)
	r := newTestRouter(nil)
	r.GET("/health", handler.Health)

	mock.ExpectPing()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type rejectingTokens struct{}

func (rejectingTokens) ParseAccess(string) (uuid.UUID, string, error) {
	return uuid.Nil, "", errors.New("token is malformed")
}

func TestWSHandler_RequiresToken(t *testing.T) {
	handler := NewWSHandler(ws.NewHub(nil), rejectingTokens{}, nil)
	r := newTestRouter(nil)
	r.GET("/ws", handler.Handle)

	for _, url := range []string{"/ws", "/ws?token=garbage"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", url, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, url)
	}
}
