package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/repository"
)

// memStore - транзакционное хранилище в памяти для тестов сервисов.
// Транзакции сериализуются мьютексом, при ошибке состояние откатывается к снимку.
type memStore struct {
	mu sync.Mutex

	users        map[uuid.UUID]models.User
	gigs         map[uuid.UUID]models.Gig
	proposals    map[uuid.UUID]models.Proposal
	contracts    map[uuid.UUID]models.Contract
	escrows      map[uuid.UUID]models.Escrow
	transactions []models.Transaction

	// failOn заставляет указанный метод Tx вернуть ошибку.
	failOn string
}

var errInjected = errors.New("injected store failure")

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[uuid.UUID]models.User),
		gigs:      make(map[uuid.UUID]models.Gig),
		proposals: make(map[uuid.UUID]models.Proposal),
		contracts: make(map[uuid.UUID]models.Contract),
		escrows:   make(map[uuid.UUID]models.Escrow),
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.gigs {
		c.gigs[k] = v
	}
	for k, v := range s.proposals {
		c.proposals[k] = v
	}
	for k, v := range s.contracts {
		c.contracts[k] = v
	}
	for k, v := range s.escrows {
		c.escrows[k] = v
	}
	c.transactions = append([]models.Transaction(nil), s.transactions...)
	return c
}

func (s *memStore) restore(c *memStore) {
	s.users = c.users
	s.gigs = c.gigs
	s.proposals = c.proposals
	s.contracts = c.contracts
	s.escrows = c.escrows
	s.transactions = c.transactions
}

// Хелперы для подготовки данных и проверок.

func (s *memStore) addUser(role string, balance int64) models.User {
	u := models.User{
		ID:            uuid.New(),
		Name:          role + " user",
		Email:         uuid.NewString() + "@example.com",
		Role:          role,
		WalletBalance: decimal.NewFromInt(balance),
		Rating:        decimal.Zero,
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addGig(clientID uuid.UUID, status string) models.Gig {
	g := models.Gig{
		ID:          uuid.New(),
		ClientID:    clientID,
		Title:       "Лендинг для кофейни",
		Description: "Нужен одностраничный сайт",
		Budget:      decimal.NewFromInt(500),
		Status:      status,
	}
	s.gigs[g.ID] = g
	return g
}

func (s *memStore) addProposal(gigID, freelancerID uuid.UUID, amount int64) models.Proposal {
	p := models.Proposal{
		ID:             uuid.New(),
		GigID:          gigID,
		FreelancerID:   freelancerID,
		CoverLetter:    "Сделаю за неделю",
		ProposedAmount: decimal.NewFromInt(amount),
		DeliveryDays:   7,
		Status:         models.ProposalStatusPending,
	}
	s.proposals[p.ID] = p
	return p
}

func (s *memStore) user(id uuid.UUID) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memStore) gig(id uuid.UUID) models.Gig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gigs[id]
}

func (s *memStore) proposal(id uuid.UUID) models.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proposals[id]
}

func (s *memStore) contract(id uuid.UUID) models.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contracts[id]
}

func (s *memStore) escrowOf(contractID uuid.UUID) (models.Escrow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.escrows {
		if e.ContractID == contractID {
			return e, true
		}
	}
	return models.Escrow{}, false
}

func (s *memStore) counts() (contracts, escrows, transactions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contracts), len(s.escrows), len(s.transactions)
}

func (s *memStore) ledger() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Transaction(nil), s.transactions...)
}

// totalMoney - сумма всех балансов и заблокированных в эскроу средств.
func (s *memStore) totalMoney() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, u := range s.users {
		total = total.Add(u.WalletBalance)
	}
	for _, e := range s.escrows {
		if e.Status == models.EscrowStatusLocked {
			total = total.Add(e.Amount)
		}
	}
	return total
}

type memTx struct {
	s *memStore
}

func (t *memTx) fail(method string) error {
	if t.s.failOn == method {
		return errInjected
	}
	return nil
}

func (t *memTx) GetUserForUpdate(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := t.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (t *memTx) GetGigForUpdate(_ context.Context, id uuid.UUID) (*models.Gig, error) {
	g, ok := t.s.gigs[id]
	if !ok {
		return nil, repository.ErrGigNotFound
	}
	return &g, nil
}

func (t *memTx) GetProposalForUpdate(_ context.Context, id uuid.UUID) (*models.Proposal, error) {
	p, ok := t.s.proposals[id]
	if !ok {
		return nil, repository.ErrProposalNotFound
	}
	return &p, nil
}

func (t *memTx) GetContractForUpdate(_ context.Context, id uuid.UUID) (*models.Contract, error) {
	c, ok := t.s.contracts[id]
	if !ok {
		return nil, repository.ErrContractNotFound
	}
	return &c, nil
}

func (t *memTx) GetEscrowByContractForUpdate(_ context.Context, contractID uuid.UUID) (*models.Escrow, error) {
	for _, e := range t.s.escrows {
		if e.ContractID == contractID {
			e := e
			return &e, nil
		}
	}
	return nil, repository.ErrEscrowNotFound
}

func (t *memTx) ProposalExists(_ context.Context, gigID, freelancerID uuid.UUID) (bool, error) {
	for _, p := range t.s.proposals {
		if p.GigID == gigID && p.FreelancerID == freelancerID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateProposal(_ context.Context, p *models.Proposal) error {
	if err := t.fail("CreateProposal"); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	t.s.proposals[p.ID] = *p
	return nil
}

func (t *memTx) UpdateProposalStatus(_ context.Context, id uuid.UUID, status string) error {
	p, ok := t.s.proposals[id]
	if !ok {
		return repository.ErrProposalNotFound
	}
	p.Status = status
	t.s.proposals[id] = p
	return nil
}

func (t *memTx) RejectPendingProposals(_ context.Context, gigID, exceptID uuid.UUID) (int64, error) {
	if err := t.fail("RejectPendingProposals"); err != nil {
		return 0, err
	}
	var n int64
	for id, p := range t.s.proposals {
		if p.GigID == gigID && id != exceptID && p.Status == models.ProposalStatusPending {
			p.Status = models.ProposalStatusRejected
			t.s.proposals[id] = p
			n++
		}
	}
	return n, nil
}

func (t *memTx) UpdateGigStatus(_ context.Context, id uuid.UUID, status string) error {
	g, ok := t.s.gigs[id]
	if !ok {
		return repository.ErrGigNotFound
	}
	g.Status = status
	t.s.gigs[id] = g
	return nil
}

func (t *memTx) CreateContract(_ context.Context, c *models.Contract) error {
	for _, existing := range t.s.contracts {
		if existing.GigID == c.GigID {
			return repository.ErrDuplicateContract
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	t.s.contracts[c.ID] = *c
	return nil
}

func (t *memTx) UpdateContract(_ context.Context, c *models.Contract) error {
	if _, ok := t.s.contracts[c.ID]; !ok {
		return repository.ErrContractNotFound
	}
	t.s.contracts[c.ID] = *c
	return nil
}

func (t *memTx) RatedContractStats(_ context.Context, freelancerID, excludeContractID uuid.UUID) (int, int, error) {
	var sum, count int
	for id, c := range t.s.contracts {
		if c.FreelancerID == freelancerID && c.Status == models.ContractStatusApproved && c.Rating != nil && id != excludeContractID {
			sum += *c.Rating
			count++
		}
	}
	return sum, count, nil
}

func (t *memTx) CreateEscrow(_ context.Context, e *models.Escrow) error {
	for _, existing := range t.s.escrows {
		if existing.ContractID == e.ContractID {
			return repository.ErrDuplicateEscrow
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	t.s.escrows[e.ID] = *e
	return nil
}

func (t *memTx) UpdateEscrowStatus(_ context.Context, id uuid.UUID, status string) error {
	e, ok := t.s.escrows[id]
	if !ok {
		return repository.ErrEscrowNotFound
	}
	e.Status = status
	t.s.escrows[id] = e
	return nil
}

func (t *memTx) AdjustBalance(_ context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	u, ok := t.s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.WalletBalance = u.WalletBalance.Add(delta)
	if u.WalletBalance.IsNegative() {
		return errors.New("wallet_balance check violated")
	}
	t.s.users[userID] = u
	return nil
}

func (t *memTx) UpdateUserRating(_ context.Context, userID uuid.UUID, rating decimal.Decimal, totalReviews int) error {
	u, ok := t.s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Rating = rating
	u.TotalReviews = totalReviews
	t.s.users[userID] = u
	return nil
}

func (t *memTx) AppendTransaction(_ context.Context, tr *models.Transaction) error {
	if err := t.fail("AppendTransaction"); err != nil {
		return err
	}
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	t.s.transactions = append(t.s.transactions, *tr)
	return nil
}

// recordingHub запоминает отправленные уведомления.
type recordingHub struct {
	mu     sync.Mutex
	events []sentEvent
}

type sentEvent struct {
	userID uuid.UUID
	event  string
}

func (h *recordingHub) BroadcastToUser(userID uuid.UUID, event string, _ interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, sentEvent{userID: userID, event: event})
	return nil
}

func (h *recordingHub) sentTo(userID uuid.UUID, event string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.events {
		if e.userID == userID && e.event == event {
			return true
		}
	}
	return false
}
