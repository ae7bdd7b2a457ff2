package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, startPrice int64, endDate time.Time) *AuctionItem {
	t.Helper()
	item, err := NewAuctionItem(uuid.New(), uuid.New(), "Vintage Vase", "a beautiful vintage vase", startPrice, endDate, time.Now().UTC())
	require.NoError(t, err)
	return item
}

func TestNewAuctionItem_Validation(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(time.Hour)

	_, err := NewAuctionItem(uuid.New(), uuid.New(), "", "", 100, future, now)
	require.ErrorIs(t, err, ErrEmptyTitle)

	_, err = NewAuctionItem(uuid.New(), uuid.New(), "Vase", "", -1, future, now)
	require.ErrorIs(t, err, ErrNegativeStartPrice)

	_, err = NewAuctionItem(uuid.New(), uuid.New(), "Vase", "", 100, now.Add(-time.Minute), now)
	require.ErrorIs(t, err, ErrEndDateInPast)

	_, err = NewAuctionItem(uuid.New(), uuid.New(), "Vase", "", 100, now, now)
	require.ErrorIs(t, err, ErrEndDateInPast, "end date equal to now is already expired")

	item, err := NewAuctionItem(uuid.New(), uuid.New(), "Vase", "", 100, future, now)
	require.NoError(t, err)
	require.Equal(t, StateOpen, item.State)
	require.Empty(t, item.Bids)
}

func TestCanAcceptBid(t *testing.T) {
	now := time.Now().UTC()
	item := newTestItem(t, 100, now.Add(time.Hour))

	require.NoError(t, item.CanAcceptBid(now))
	require.ErrorIs(t, item.CanAcceptBid(now.Add(2*time.Hour)), ErrAuctionClosed)
	require.ErrorIs(t, item.CanAcceptBid(item.EndDate), ErrAuctionClosed)

	item.State = StateSettled
	require.ErrorIs(t, item.CanAcceptBid(now), ErrAuctionClosed)
}

func TestCheckBidAmount(t *testing.T) {
	item := newTestItem(t, 100, time.Now().Add(time.Hour))

	require.ErrorIs(t, item.CheckBidAmount(0), ErrInvalidAmount)
	require.ErrorIs(t, item.CheckBidAmount(-5), ErrInvalidAmount)
	require.ErrorIs(t, item.CheckBidAmount(100), ErrBidBelowStartPrice, "start price is a strict floor")
	require.ErrorIs(t, item.CheckBidAmount(50), ErrBidBelowStartPrice)
	require.NoError(t, item.CheckBidAmount(101))
}

func TestApplyUpdate_NoBids(t *testing.T) {
	now := time.Now().UTC()
	item := newTestItem(t, 100, now.Add(time.Hour))

	upd := ItemUpdate{
		Title:       "Restored Vase",
		Description: "freshly restored",
		StartPrice:  250,
		EndDate:     now.Add(48 * time.Hour),
	}
	require.NoError(t, item.ApplyUpdate(upd, false, now))
	require.Equal(t, "Restored Vase", item.Title)
	require.Equal(t, int64(250), item.StartPrice)
	require.Equal(t, upd.EndDate, item.EndDate)
}

func TestApplyUpdate_FrozenOnceBidsExist(t *testing.T) {
	now := time.Now().UTC()
	item := newTestItem(t, 100, now.Add(time.Hour))

	priceChange := ItemUpdate{Title: item.Title, StartPrice: 500, EndDate: item.EndDate}
	require.ErrorIs(t, item.ApplyUpdate(priceChange, true, now), ErrItemFrozen)

	dateChange := ItemUpdate{Title: item.Title, StartPrice: item.StartPrice, EndDate: item.EndDate.Add(time.Hour)}
	require.ErrorIs(t, item.ApplyUpdate(dateChange, true, now), ErrItemFrozen)

	// title and description remain editable
	titleChange := ItemUpdate{Title: "New title", Description: "new", StartPrice: item.StartPrice, EndDate: item.EndDate}
	require.NoError(t, item.ApplyUpdate(titleChange, true, now))
	require.Equal(t, "New title", item.Title)
}

func TestApplyUpdate_Validation(t *testing.T) {
	now := time.Now().UTC()
	item := newTestItem(t, 100, now.Add(time.Hour))

	require.ErrorIs(t, item.ApplyUpdate(ItemUpdate{Title: ""}, false, now), ErrEmptyTitle)

	bad := ItemUpdate{Title: "x", StartPrice: -1, EndDate: item.EndDate}
	require.ErrorIs(t, item.ApplyUpdate(bad, false, now), ErrNegativeStartPrice)

	past := ItemUpdate{Title: "x", StartPrice: 100, EndDate: now.Add(-time.Hour)}
	require.ErrorIs(t, item.ApplyUpdate(past, false, now), ErrEndDateInPast)
}

func TestSettle(t *testing.T) {
	now := time.Now().UTC()
	item := newTestItem(t, 100, now.Add(time.Hour))

	require.NoError(t, item.Settle(now))
	require.Equal(t, StateSettled, item.State)
	require.ErrorIs(t, item.Settle(now), ErrAuctionClosed)
}
