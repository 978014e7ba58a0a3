package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/phoenixpme/auction-service/internal/clock"
	"github.com/phoenixpme/auction-service/internal/errs"
	"github.com/phoenixpme/auction-service/internal/ledger"
	"github.com/phoenixpme/auction-service/internal/model"
	"github.com/phoenixpme/auction-service/internal/repository/memory"
)

const (
	seller   = "testcore1seller"
	bidderA  = "testcore1aaa"
	bidderB  = "testcore1bbb"
	platform = "testcore1platform"
)

type captureSink struct {
	mu     sync.Mutex
	events []model.Event
}

func (c *captureSink) Publish(_ context.Context, ev model.Event) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	return nil
}

func (c *captureSink) byKind(kind model.EventKind) []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.Event
	for _, ev := range c.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type failingLedger struct{ calls int }

func (f *failingLedger) Transfer(context.Context, string, string, int64, string) (ledger.Receipt, error) {
	f.calls++
	return ledger.Receipt{}, fmt.Errorf("%w: rpc timeout", errs.ErrSettlementFailed)
}

type env struct {
	svc    *AuctionServiceImpl
	store  *memory.AuctionStore
	ledger *ledger.InMemory
	sink   *captureSink
	clock  *clock.Fake
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:  memory.NewAuctionStore(),
		ledger: ledger.NewInMemory(),
		sink:   &captureSink{},
		clock:  clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	rate, err := ParseFeeRate(0.011)
	if err != nil {
		t.Fatalf("fee rate: %v", err)
	}
	e.svc = NewAuctionService(e.store, e.ledger, e.sink, e.clock, AuctionConfig{
		FeeRate:         rate,
		MinBidIncrement: 1,
		PlatformAddress: platform,
	})
	return e
}

func (e *env) mustCreate(t *testing.T, starting, reserve int64) *model.Auction {
	t.Helper()
	a, err := e.svc.CreateAuction(context.Background(), seller, "1oz gold eagle", starting, time.Hour, reserve)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return a
}

func TestCreateAuction_Validation(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		seller   string
		desc     string
		price    int64
		duration time.Duration
		reserve  int64
	}{
		{"empty seller", "", "item", 100, time.Hour, 0},
		{"empty description", seller, "  ", 100, time.Hour, 0},
		{"zero price", seller, "item", 0, time.Hour, 0},
		{"negative price", seller, "item", -1, time.Hour, 0},
		{"zero duration", seller, "item", 100, 0, 0},
		{"reserve below starting", seller, "item", 100, time.Hour, 99},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.CreateAuction(ctx, tc.seller, tc.desc, tc.price, tc.duration, tc.reserve)
			if !errors.Is(err, errs.ErrInvalidArgument) {
				t.Fatalf("want ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestCreateAuction_OK(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	a := e.mustCreate(t, 100, 0)

	if a.Status != model.StatusActive {
		t.Fatalf("status want active, got %s", a.Status)
	}
	if want := e.clock.Now().Add(time.Hour); !a.EndTime.Equal(want) {
		t.Fatalf("end time want %v, got %v", want, a.EndTime)
	}
	if a.HighestBid != nil || a.BidCount != 0 {
		t.Fatalf("fresh auction must have no bids")
	}
}

func TestCreateAuction_DefaultDuration(t *testing.T) {
	t.Parallel()
	store := memory.NewAuctionStore()
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rate, _ := ParseFeeRate(0.011)
	svc := NewAuctionService(store, ledger.NewInMemory(), &captureSink{}, clk, AuctionConfig{
		FeeRate:         rate,
		DefaultDuration: 72 * time.Hour,
	})

	a, err := svc.CreateAuction(context.Background(), seller, "silver bar", 100, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := clk.Now().Add(72 * time.Hour); !a.EndTime.Equal(want) {
		t.Fatalf("end time want %v, got %v", want, a.EndTime)
	}
}

func TestPlaceBid_MonotonicAmounts(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 0)

	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderA, 99); !errors.Is(err, errs.ErrBidTooLow) {
		t.Fatalf("below starting price: want ErrBidTooLow, got %v", err)
	}
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderA, 100); err != nil {
		t.Fatalf("bid at starting price: %v", err)
	}
	// equal to current highest is too low: strict increase required
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderB, 100); !errors.Is(err, errs.ErrBidTooLow) {
		t.Fatalf("equal bid: want ErrBidTooLow, got %v", err)
	}
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderB, 101); err != nil {
		t.Fatalf("higher bid: %v", err)
	}

	bids, err := e.svc.ListBids(ctx, a.ID)
	if err != nil {
		t.Fatalf("list bids: %v", err)
	}
	for i := 1; i < len(bids); i++ {
		if bids[i].Amount <= bids[i-1].Amount {
			t.Fatalf("history not strictly increasing: %v", bids)
		}
	}
}

func TestPlaceBid_SellerMayNotBid(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	a := e.mustCreate(t, 100, 0)

	_, err := e.svc.PlaceBid(context.Background(), a.ID, seller, 10_000)
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("self-bid: want ErrInvalidArgument, got %v", err)
	}
}

func TestPlaceBid_ClosedOrExpired(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 0)

	e.clock.Advance(time.Hour) // exactly at endTime: bidding closed
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderA, 150); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("expired: want ErrInvalidState, got %v", err)
	}

	if _, err := e.svc.EndAuction(ctx, a.ID, seller); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderA, 150); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("ended: want ErrInvalidState, got %v", err)
	}
}

func TestPlaceBid_UnknownAuction(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	_, err := e.svc.PlaceBid(context.Background(), uuid.Must(uuid.NewV4()), bidderA, 100)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPlaceBid_OutbidEvent(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 0)

	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderA, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderB, 120); err != nil {
		t.Fatal(err)
	}

	outbids := e.sink.byKind(model.EventOutBid)
	if len(outbids) != 1 {
		t.Fatalf("want 1 outbid event, got %d", len(outbids))
	}
	if outbids[0].Recipient != bidderA || outbids[0].Amount != 120 {
		t.Fatalf("outbid event wrong: %+v", outbids[0])
	}
	if got := len(e.sink.byKind(model.EventBidAccepted)); got != 2 {
		t.Fatalf("want 2 bid_accepted events, got %d", got)
	}
}

// brokenCommitStore fails every bid commit without touching the backing store.
type brokenCommitStore struct {
	*memory.AuctionStore
}

func (s *brokenCommitStore) SaveWithBid(context.Context, *model.Auction, *model.Bid) error {
	return errors.New("bids insert failed")
}

func TestPlaceBid_FailedCommitLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	store := &brokenCommitStore{memory.NewAuctionStore()}
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rate, _ := ParseFeeRate(0.011)
	svc := NewAuctionService(store, ledger.NewInMemory(), &captureSink{}, clk, AuctionConfig{
		FeeRate:         rate,
		PlatformAddress: platform,
	})

	ctx := context.Background()
	a, err := svc.CreateAuction(ctx, seller, "1oz gold eagle", 100, time.Hour, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.PlaceBid(ctx, a.ID, bidderA, 150); err == nil {
		t.Fatal("want commit error")
	}

	got, err := svc.GetAuction(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.HighestBid != nil || got.BidCount != 0 {
		t.Fatalf("failed bid left partial state: %+v", got)
	}
	bids, err := svc.ListBids(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(bids) != 0 {
		t.Fatalf("failed bid left history: %+v", bids)
	}
}

func TestEndAuction_ForbiddenBeforeExpiry(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	a := e.mustCreate(t, 100, 0)

	_, err := e.svc.EndAuction(context.Background(), a.ID, bidderA)
	if !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-seller before expiry: want ErrForbidden, got %v", err)
	}
}

func TestEndAuction_AnyoneAfterExpiry_Idempotent(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 0)
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderA, 150); err != nil {
		t.Fatal(err)
	}

	e.clock.Advance(2 * time.Hour)

	ended, err := e.svc.EndAuction(ctx, a.ID, bidderB) // sweeper / anyone
	if err != nil {
		t.Fatalf("end after expiry: %v", err)
	}
	if ended.Winner != bidderA || ended.WinningAmount != 150 {
		t.Fatalf("winner want %s/150, got %s/%d", bidderA, ended.Winner, ended.WinningAmount)
	}

	// second call must not double-process
	if _, err := e.svc.EndAuction(ctx, a.ID, bidderB); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("second end: want ErrInvalidState, got %v", err)
	}
	got, err := e.svc.GetAuction(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Winner != bidderA || got.WinningAmount != 150 || got.Status != model.StatusEnded {
		t.Fatalf("outcome changed by redundant end: %+v", got)
	}
}

func TestEndAuction_ReserveNotMet(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 500)
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderA, 150); err != nil {
		t.Fatal(err)
	}
	e.clock.Advance(2 * time.Hour)

	ended, err := e.svc.EndAuction(ctx, a.ID, seller)
	if err != nil {
		t.Fatal(err)
	}
	if ended.Status != model.StatusEnded || ended.Winner != "" || ended.WinningAmount != 0 {
		t.Fatalf("reserve not met: want ended/no winner/0, got %+v", ended)
	}

	// release finalizes with zero transfer
	e.ledger.Deposit(bidderA, 1000)
	done, err := e.svc.ReleaseFunds(ctx, a.ID, seller)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if done.Status != model.StatusCompleted {
		t.Fatalf("want completed, got %s", done.Status)
	}
	if bal := e.ledger.Balance(bidderA); bal != 1000 {
		t.Fatalf("no funds should move, bidder balance %d", bal)
	}
}

func TestReleaseFunds_HappyPath(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 0)
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderB, 150); err != nil {
		t.Fatal(err)
	}
	e.clock.Advance(2 * time.Hour)
	if _, err := e.svc.EndAuction(ctx, a.ID, seller); err != nil {
		t.Fatal(err)
	}

	e.ledger.Deposit(bidderB, 150)
	done, err := e.svc.ReleaseFunds(ctx, a.ID, seller)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if done.Status != model.StatusCompleted {
		t.Fatalf("want completed, got %s", done.Status)
	}
	// fee = round(150*0.011) = 2, net = 148
	if bal := e.ledger.Balance(seller); bal != 148 {
		t.Fatalf("seller balance want 148, got %d", bal)
	}
	if bal := e.ledger.Balance(platform); bal != 2 {
		t.Fatalf("platform balance want 2, got %d", bal)
	}
	if bal := e.ledger.Balance(bidderB); bal != 0 {
		t.Fatalf("bidder balance want 0, got %d", bal)
	}

	released := e.sink.byKind(model.EventFundsReleased)
	if len(released) != 1 {
		t.Fatalf("want 1 funds_released event, got %d", len(released))
	}
	ev := released[0]
	if ev.Fee != 2 || ev.NetAmount != 148 || ev.Amount != 150 || len(ev.ReceiptIDs) != 2 {
		t.Fatalf("fee breakdown missing from event: %+v", ev)
	}
}

func TestReleaseFunds_NoPlatformAddress(t *testing.T) {
	t.Parallel()
	store := memory.NewAuctionStore()
	lg := ledger.NewInMemory()
	sink := &captureSink{}
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rate, _ := ParseFeeRate(0.011)
	svc := NewAuctionService(store, lg, sink, clk, AuctionConfig{FeeRate: rate})

	ctx := context.Background()
	a, err := svc.CreateAuction(ctx, seller, "1oz gold eagle", 100, time.Hour, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PlaceBid(ctx, a.ID, bidderB, 150); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.EndAuction(ctx, a.ID, seller); err != nil {
		t.Fatal(err)
	}

	lg.Deposit(bidderB, 150)
	if _, err := svc.ReleaseFunds(ctx, a.ID, seller); err != nil {
		t.Fatalf("release: %v", err)
	}

	// with nowhere to route a fee, the seller receives the full amount
	if bal := lg.Balance(seller); bal != 150 {
		t.Fatalf("seller balance want 150, got %d", bal)
	}
	if bal := lg.Balance(bidderB); bal != 0 {
		t.Fatalf("bidder balance want 0, got %d", bal)
	}

	released := sink.byKind(model.EventFundsReleased)
	if len(released) != 1 {
		t.Fatalf("want 1 funds_released event, got %d", len(released))
	}
	ev := released[0]
	if ev.Fee != 0 || ev.NetAmount != 150 || len(ev.ReceiptIDs) != 1 {
		t.Fatalf("event must report no fee charged: %+v", ev)
	}
}

func TestReleaseFunds_Guards(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 0)

	// no release without end
	if _, err := e.svc.ReleaseFunds(ctx, a.ID, seller); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("active release: want ErrInvalidState, got %v", err)
	}
	// seller only
	e.clock.Advance(2 * time.Hour)
	if _, err := e.svc.EndAuction(ctx, a.ID, seller); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.ReleaseFunds(ctx, a.ID, bidderA); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-seller release: want ErrForbidden, got %v", err)
	}
}

func TestReleaseFunds_SettlementFailureIsRetryable(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 0)
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderB, 150); err != nil {
		t.Fatal(err)
	}
	e.clock.Advance(2 * time.Hour)
	if _, err := e.svc.EndAuction(ctx, a.ID, seller); err != nil {
		t.Fatal(err)
	}

	// bidder has no funds: transfer fails, status must stay Ended
	if _, err := e.svc.ReleaseFunds(ctx, a.ID, seller); !errors.Is(err, errs.ErrSettlementFailed) {
		t.Fatalf("want ErrSettlementFailed, got %v", err)
	}
	got, err := e.svc.GetAuction(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusEnded {
		t.Fatalf("status after failed release want ended, got %s", got.Status)
	}

	// fund and retry: same idempotency keys, succeeds exactly once
	e.ledger.Deposit(bidderB, 150)
	if _, err := e.svc.ReleaseFunds(ctx, a.ID, seller); err != nil {
		t.Fatalf("retry release: %v", err)
	}
	if bal := e.ledger.Balance(seller); bal != 148 {
		t.Fatalf("seller balance want 148, got %d", bal)
	}
}

func TestReleaseFunds_LedgerErrorPropagates(t *testing.T) {
	t.Parallel()
	fl := &failingLedger{}
	store := memory.NewAuctionStore()
	sink := &captureSink{}
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rate, _ := ParseFeeRate(0.011)
	svc := NewAuctionService(store, fl, sink, clk, AuctionConfig{FeeRate: rate, PlatformAddress: platform})

	ctx := context.Background()
	a, err := svc.CreateAuction(ctx, seller, "silver bar", 100, time.Hour, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PlaceBid(ctx, a.ID, bidderA, 200); err != nil {
		t.Fatal(err)
	}
	clk.Advance(2 * time.Hour)
	if _, err := svc.EndAuction(ctx, a.ID, seller); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ReleaseFunds(ctx, a.ID, seller); !errors.Is(err, errs.ErrSettlementFailed) {
		t.Fatalf("want ErrSettlementFailed, got %v", err)
	}
	if fl.calls != 1 {
		t.Fatalf("service must not retry the ledger internally, calls=%d", fl.calls)
	}
	if len(sink.byKind(model.EventFundsReleased)) != 0 {
		t.Fatalf("no funds_released event on failure")
	}
}

func TestCancelAuction_Guards(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()

	a := e.mustCreate(t, 100, 0)
	if _, err := e.svc.CancelAuction(ctx, a.ID, bidderA); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-seller cancel: want ErrForbidden, got %v", err)
	}

	// the first bid bars cancellation permanently
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderA, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.PlaceBid(ctx, a.ID, bidderB, 150); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.CancelAuction(ctx, a.ID, seller); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("cancel after bids: want ErrInvalidState, got %v", err)
	}

	b := e.mustCreate(t, 100, 0)
	got, err := e.svc.CancelAuction(ctx, b.ID, seller)
	if err != nil {
		t.Fatalf("cancel bid-less auction: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Fatalf("want cancelled, got %s", got.Status)
	}
	// terminal: no resurrection
	if _, err := e.svc.PlaceBid(ctx, b.ID, bidderA, 200); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("bid on cancelled: want ErrInvalidState, got %v", err)
	}
}

func TestPlaceBid_ConcurrentRace(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 0)

	var wg sync.WaitGroup
	results := make([]error, 2)
	amounts := []int64{200, 201}
	bidders := []string{bidderA, bidderB}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = e.svc.PlaceBid(ctx, a.ID, bidders[i], amounts[i])
		}(i)
	}
	wg.Wait()

	accepted := 0
	for i, err := range results {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, errs.ErrBidTooLow), errors.Is(err, errs.ErrConflict):
			// lost the race against a higher commit
		default:
			t.Fatalf("bidder %d: unexpected error %v", i, err)
		}
	}
	if accepted == 0 {
		t.Fatalf("no bid accepted")
	}

	got, err := e.svc.GetAuction(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.HighestBid == nil {
		t.Fatalf("no highest bid recorded")
	}
	// 201 can only lose to itself; if both were accepted the winner must be 201
	if accepted == 2 && got.HighestBid.Amount != 201 {
		t.Fatalf("both accepted but highest is %d", got.HighestBid.Amount)
	}

	bids, err := e.svc.ListBids(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(bids) != accepted {
		t.Fatalf("history has %d bids, %d accepted", len(bids), accepted)
	}
}

func TestPlaceBid_ManyConcurrentBidders(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	a := e.mustCreate(t, 100, 0)

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bidder := fmt.Sprintf("testcore1race%02d", i)
			_, err := e.svc.PlaceBid(ctx, a.ID, bidder, 100+int64(i))
			if err != nil && !errors.Is(err, errs.ErrBidTooLow) && !errors.Is(err, errs.ErrConflict) {
				t.Errorf("bidder %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	bids, err := e.svc.ListBids(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(bids) == 0 {
		t.Fatalf("no accepted bids")
	}
	seen := map[int64]bool{}
	max := int64(0)
	for _, b := range bids {
		if seen[b.Amount] {
			t.Fatalf("duplicate accepted amount %d", b.Amount)
		}
		seen[b.Amount] = true
		if b.Amount > max {
			max = b.Amount
		}
	}
	got, err := e.svc.GetAuction(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.HighestBid.Amount != max {
		t.Fatalf("highest bid %d != max accepted %d", got.HighestBid.Amount, max)
	}
	if got.BidCount != int64(len(bids)) {
		t.Fatalf("bid count %d != history length %d", got.BidCount, len(bids))
	}
}
