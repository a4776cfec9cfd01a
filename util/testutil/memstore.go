// Package testutil holds an in-memory bill/member/ledger store for service tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	"societypay/model"
)

// MemStore implements the bill, member and ledger repositories plus InTx.
// Transactions are serialized and rolled back on error, which is enough to
// exercise the same CAS semantics the postgres repositories give.
type MemStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	bills   map[string]model.Bill
	members map[string]model.Member
	ledger  []model.LedgerEntry

	// Writes counts successful MarkPaid and AppendIfAbsent calls.
	Writes int
}

func NewMemStore() *MemStore {
	return &MemStore{bills: map[string]model.Bill{}, members: map[string]model.Member{}}
}

func (s *MemStore) PutBill(b model.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[b.ID] = b
}

func (s *MemStore) PutMember(m model.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.Email] = m
}

func (s *MemStore) Bill(id string) model.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bills[id]
}

func (s *MemStore) Ledger() []model.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LedgerEntry(nil), s.ledger...)
}

func (s *MemStore) Get(_ context.Context, id string) (*model.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *MemStore) MarkPaid(_ context.Context, id string, u model.PaidUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok || b.Status == model.BillPaid {
		return false, nil
	}
	paid := u.PaidDate
	gd := u.GatewayDetails
	b.Status = model.BillPaid
	b.PaidDate = &paid
	b.PaymentMethod = u.PaymentMethod
	b.ReceiptNumber = u.ReceiptNumber
	b.TransactionID = u.TransactionID
	b.GatewayDetails = &gd
	s.bills[id] = b
	s.Writes++
	return true, nil
}

func (s *MemStore) ByEmail(_ context.Context, email string) (*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[email]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MemStore) AppendIfAbsent(_ context.Context, e model.LedgerEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.ledger {
		if x.OrderID == e.OrderID {
			return false, nil
		}
	}
	s.ledger = append(s.ledger, e)
	s.Writes++
	return true, nil
}

func (s *MemStore) ListByMember(_ context.Context, memberID string) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.LedgerEntry{}
	for _, e := range s.ledger {
		if e.MemberID == memberID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *MemStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	bills := make(map[string]model.Bill, len(s.bills))
	for k, v := range s.bills {
		bills[k] = v
	}
	ledger := append([]model.LedgerEntry(nil), s.ledger...)
	writes := s.Writes
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.bills, s.ledger, s.Writes = bills, ledger, writes
		s.mu.Unlock()
		return err
	}
	return nil
}
