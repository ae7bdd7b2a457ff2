package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
	userdomain "github.com/mpusnik/auctionhub/internal/user/domain"
)

// memStore is an in-memory backing store shared by the fake repositories.
// The fake pool takes mu on BeginTx and releases it on Commit/Rollback, which
// mirrors the serialization the row lock provides in postgres: while one
// "transaction" is open, no other bidder can read or write the same data.
type memStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.AuctionItem
	bids  map[uuid.UUID][]*domain.Bid
	users map[uuid.UUID]*userdomain.User

	insertBidErr error
	beginErr     error
	forUpdateErr map[uuid.UUID]error

	// ids appended to ListExpiredOpen results regardless of current state,
	// emulating a candidate list gone stale before the lock was taken
	staleCandidates []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		items:        make(map[uuid.UUID]*domain.AuctionItem),
		bids:         make(map[uuid.UUID][]*domain.Bid),
		users:        make(map[uuid.UUID]*userdomain.User),
		forUpdateErr: make(map[uuid.UUID]error),
	}
}

func (s *memStore) addUser() uuid.UUID {
	id := uuid.New()
	s.users[id] = &userdomain.User{ID: id, Email: id.String() + "@example.com"}
	return id
}

func (s *memStore) addItem(ownerID uuid.UUID, startPrice int64, endDate time.Time) *domain.AuctionItem {
	item := &domain.AuctionItem{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Title:      "item " + uuid.NewString()[:8],
		StartPrice: startPrice,
		EndDate:    endDate,
		State:      domain.StateOpen,
		CreatedAt:  time.Now().UTC(),
	}
	s.items[item.ID] = item
	return item
}

func (s *memStore) addBid(itemID, bidderID uuid.UUID, amount int64, status domain.BidStatus) *domain.Bid {
	b := domain.NewBid(uuid.New(), itemID, bidderID, amount, status, time.Now().UTC())
	s.bids[itemID] = append(s.bids[itemID], b)
	return b
}

func (s *memStore) winningBids(itemID uuid.UUID) []*domain.Bid {
	var out []*domain.Bid
	for _, b := range s.bids[itemID] {
		if b.Status == domain.StatusWinning {
			out = append(out, b)
		}
	}
	return out
}

// memTx satisfies pgx.Tx for the methods the use cases call. The embedded
// interface is nil; anything beyond Commit/Rollback would panic, which is the
// point: the fakes must not touch the tx.
type memTx struct {
	pgx.Tx
	store *memStore
}

func (t *memTx) Commit(context.Context) error {
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	t.store.mu.Unlock()
	return nil
}

type memPool struct {
	store *memStore
}

func (p *memPool) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	if p.store.beginErr != nil {
		return nil, p.store.beginErr
	}
	p.store.mu.Lock()
	return &memTx{store: p.store}, nil
}

func (p *memPool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (p *memPool) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (p *memPool) QueryRow(context.Context, string, ...any) pgx.Row       { return nil }
func (p *memPool) Ping(context.Context) error                             { return nil }
func (p *memPool) Close()                                                 {}

type fakeItemRepo struct {
	store *memStore
}

func (r *fakeItemRepo) copyOf(id uuid.UUID) (*domain.AuctionItem, error) {
	item, ok := r.store.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeItemRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.AuctionItem, error) {
	return r.copyOf(id)
}

func (r *fakeItemRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.AuctionItem, error) {
	if err := r.store.forUpdateErr[id]; err != nil {
		return nil, err
	}
	return r.copyOf(id)
}

func (r *fakeItemRepo) Create(_ context.Context, item *domain.AuctionItem) error {
	cp := *item
	r.store.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *domain.AuctionItem) error {
	if _, ok := r.store.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	cp := *item
	r.store.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.store.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(r.store.items, id)
	delete(r.store.bids, id)
	return nil
}

func (r *fakeItemRepo) SetState(_ context.Context, _ pgx.Tx, id uuid.UUID, state domain.ItemState, now time.Time) error {
	item, ok := r.store.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	item.State = state
	item.UpdatedAt = now
	return nil
}

func (r *fakeItemRepo) sortedItems() []*domain.AuctionItem {
	out := make([]*domain.AuctionItem, 0, len(r.store.items))
	for _, item := range r.store.items {
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out
}

func (r *fakeItemRepo) ListAll(_ context.Context, limit, offset int) ([]*domain.AuctionItem, error) {
	all := r.sortedItems()
	if offset >= len(all) {
		return []*domain.AuctionItem{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeItemRepo) CountAll(context.Context) (int64, error) {
	return int64(len(r.store.items)), nil
}

func (r *fakeItemRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.AuctionItem, error) {
	var out []*domain.AuctionItem
	for _, item := range r.sortedItems() {
		if item.OwnerID == ownerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) ListBidded(_ context.Context, userID uuid.UUID) ([]*domain.AuctionItem, error) {
	var out []*domain.AuctionItem
	for _, item := range r.sortedItems() {
		for _, b := range r.store.bids[item.ID] {
			if b.BidderID == userID {
				out = append(out, item)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeItemRepo) listByWinning(userID uuid.UUID, now time.Time, ended bool) []*domain.AuctionItem {
	var out []*domain.AuctionItem
	for _, item := range r.sortedItems() {
		for _, b := range r.store.bids[item.ID] {
			if b.BidderID == userID && b.Status == domain.StatusWinning {
				if ended == !item.EndDate.After(now) {
					out = append(out, item)
				}
				break
			}
		}
	}
	return out
}

func (r *fakeItemRepo) ListWon(_ context.Context, userID uuid.UUID, now time.Time) ([]*domain.AuctionItem, error) {
	return r.listByWinning(userID, now, true), nil
}

func (r *fakeItemRepo) ListWinning(_ context.Context, userID uuid.UUID, now time.Time) ([]*domain.AuctionItem, error) {
	return r.listByWinning(userID, now, false), nil
}

func (r *fakeItemRepo) ListExpiredOpen(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	out := append([]uuid.UUID{}, r.store.staleCandidates...)
	for _, item := range r.sortedItems() {
		if item.State == domain.StateOpen && !item.EndDate.After(now) {
			out = append(out, item.ID)
		}
	}
	return out, nil
}

type fakeBidRepo struct {
	store *memStore
}

func (r *fakeBidRepo) Insert(_ context.Context, _ pgx.Tx, bid *domain.Bid) error {
	if r.store.insertBidErr != nil {
		return r.store.insertBidErr
	}
	cp := *bid
	r.store.bids[bid.AuctionItemID] = append(r.store.bids[bid.AuctionItemID], &cp)
	return nil
}

func (r *fakeBidRepo) DemoteAll(_ context.Context, _ pgx.Tx, itemID uuid.UUID, now time.Time) error {
	for _, b := range r.store.bids[itemID] {
		b.Status = domain.StatusOutbid
		b.UpdatedAt = now
	}
	return nil
}

func (r *fakeBidRepo) copies(itemID uuid.UUID) []*domain.Bid {
	src := r.store.bids[itemID]
	out := make([]*domain.Bid, 0, len(src))
	for _, b := range src {
		cp := *b
		out = append(out, &cp)
	}
	return out
}

func (r *fakeBidRepo) ListByItemTx(_ context.Context, _ pgx.Tx, itemID uuid.UUID) ([]*domain.Bid, error) {
	return r.copies(itemID), nil
}

func (r *fakeBidRepo) GetWinningTx(_ context.Context, _ pgx.Tx, itemID uuid.UUID) (*domain.Bid, error) {
	for _, b := range r.store.bids[itemID] {
		if b.Status == domain.StatusWinning {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBidRepo) ListByItem(_ context.Context, itemID uuid.UUID) ([]*domain.Bid, error) {
	return r.copies(itemID), nil
}

func (r *fakeBidRepo) ListByBidder(_ context.Context, bidderID uuid.UUID) ([]*domain.Bid, error) {
	var out []*domain.Bid
	for _, bids := range r.store.bids {
		for _, b := range bids {
			if b.BidderID == bidderID {
				cp := *b
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (r *fakeBidRepo) ListByItemIDs(_ context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]*domain.Bid, error) {
	out := make(map[uuid.UUID][]*domain.Bid, len(itemIDs))
	for _, id := range itemIDs {
		if bids := r.copies(id); len(bids) > 0 {
			out[id] = bids
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*userdomain.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.store.users[id]
	return ok, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *userdomain.User) error {
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

type publishedEvent struct {
	itemID uuid.UUID
	bid    *domain.Bid
}

// recordingPublisher captures events so tests can assert they fire after the
// write has landed.
type recordingPublisher struct {
	mu      sync.Mutex
	placed  []publishedEvent
	settled []publishedEvent
}

func (p *recordingPublisher) PublishBidPlaced(itemID uuid.UUID, bid *domain.Bid) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, publishedEvent{itemID: itemID, bid: bid})
}

func (p *recordingPublisher) PublishAuctionSettled(itemID uuid.UUID, winner *domain.Bid) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settled = append(p.settled, publishedEvent{itemID: itemID, bid: winner})
}
