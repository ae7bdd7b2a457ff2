package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mpusnik/auctionhub/internal/auction/domain"
)

func newFinalizeFixture(t *testing.T) (*memStore, *FinalizeExpiredUseCase, *recordingPublisher) {
	t.Helper()
	store := newMemStore()
	events := &recordingPublisher{}
	uc := NewFinalizeExpiredUseCase(
		&fakeItemRepo{store: store},
		&fakeBidRepo{store: store},
		&memPool{store: store},
		events,
	)
	return store, uc, events
}

func expiredItem(store *memStore) *domain.AuctionItem {
	item := store.addItem(store.addUser(), 100, time.Now().Add(time.Hour))
	item.EndDate = time.Now().Add(-time.Minute)
	return item
}

func TestFinalize_SettlesExpiredItemWithWinner(t *testing.T) {
	store, uc, events := newFinalizeFixture(t)
	item := expiredItem(store)
	winner := store.addBid(item.ID, store.addUser(), 150, domain.StatusWinning)
	store.addBid(item.ID, store.addUser(), 120, domain.StatusOutbid)

	settled, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, settled)
	require.Equal(t, domain.StateSettled, store.items[item.ID].State)

	require.Len(t, events.settled, 1)
	require.Equal(t, item.ID, events.settled[0].itemID)
	require.NotNil(t, events.settled[0].bid)
	require.Equal(t, winner.ID, events.settled[0].bid.ID)
}

func TestFinalize_SettlesBidlessItemWithoutWinner(t *testing.T) {
	store, uc, events := newFinalizeFixture(t)
	item := expiredItem(store)

	settled, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, settled)
	require.Equal(t, domain.StateSettled, store.items[item.ID].State)

	require.Len(t, events.settled, 1)
	require.Nil(t, events.settled[0].bid)
}

func TestFinalize_LeavesLiveAndSettledItemsAlone(t *testing.T) {
	store, uc, events := newFinalizeFixture(t)
	live := store.addItem(store.addUser(), 100, time.Now().Add(time.Hour))
	done := expiredItem(store)
	done.State = domain.StateSettled

	settled, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Zero(t, settled)
	require.Equal(t, domain.StateOpen, store.items[live.ID].State)
	require.Empty(t, events.settled)
}

func TestFinalize_OneFailureDoesNotStopTheSweep(t *testing.T) {
	store, uc, events := newFinalizeFixture(t)
	broken := expiredItem(store)
	healthy := expiredItem(store)
	store.forUpdateErr[broken.ID] = errors.New("lock timeout")

	settled, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, settled)
	require.Equal(t, domain.StateSettled, store.items[healthy.ID].State)
	require.Equal(t, domain.StateOpen, store.items[broken.ID].State)
	require.Len(t, events.settled, 1)
	require.Equal(t, healthy.ID, events.settled[0].itemID)
}

// A candidate settled by a racing sweep between the listing and the lock is
// skipped quietly; the rest of the sweep proceeds.
func TestFinalize_SkipsItemSettledByRacingSweep(t *testing.T) {
	store, uc, events := newFinalizeFixture(t)
	taken := expiredItem(store)
	taken.State = domain.StateSettled
	store.staleCandidates = append(store.staleCandidates, taken.ID)
	healthy := expiredItem(store)

	settled, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, settled)
	require.Equal(t, domain.StateSettled, store.items[healthy.ID].State)
	require.Len(t, events.settled, 1)
	require.Equal(t, healthy.ID, events.settled[0].itemID)
}

func TestFinalize_SweepIsIdempotent(t *testing.T) {
	store, uc, events := newFinalizeFixture(t)
	expiredItem(store)

	first, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first)

	second, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Zero(t, second)
	require.Len(t, events.settled, 1)
}
