package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	catalogdom "pokemint/internal/domain/catalog"
	receiptdom "pokemint/internal/domain/receipt"
)

type fixedRand struct {
	idx  int
	roll float64
}

func (r fixedRand) Intn(n int) int    { return r.idx % n }
func (r fixedRand) Float64() float64 { return r.roll }

type mintFixture struct {
	uc        *MintUsecase
	fees      *fakeFees
	minter    *fakeMinter
	submitter *fakeSubmitter
	confirmer *fakeConfirmer
	receipts  *fakeReceipts
	notifier  *fakeNotifier
	logs      *observer.ObservedLogs
	now       time.Time
}

func newMintFixture(t *testing.T, mappings []catalogdom.MappingEntry) *mintFixture {
	t.Helper()
	cat, err := catalogdom.New(
		[]catalogdom.Collectible{{Name: "Pikachu", Type: "electric", HP: 35}},
		nil,
		mappings,
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	core, logs := observer.New(zap.DebugLevel)
	f := &mintFixture{
		fees:      &fakeFees{},
		minter:    &fakeMinter{},
		submitter: &fakeSubmitter{sendErrs: map[string]error{}},
		confirmer: &fakeConfirmer{errs: map[string]error{}},
		receipts:  newFakeReceipts(),
		notifier:  &fakeNotifier{},
		logs:      logs,
		now:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	f.uc = NewMintUsecase(
		catalogdom.NewPicker(cat, 0, fixedRand{}),
		NewMetadataResolver(fakeArtwork{}, nil, "https://mint.test"),
		f.fees,
		f.minter,
		f.submitter,
		f.confirmer,
		MintConfig{Treasury: testTreasury, FeeLamports: 50_000_000},
		zap.New(core),
	).WithReceipts(f.receipts).WithNotifier(f.notifier)

	f.uc.newID = func() string { return "r-1" }
	f.uc.now = func() time.Time { return f.now }
	return f
}

var pikachuMapping = []catalogdom.MappingEntry{
	{Name: "Pikachu", MetadataLink: "https://arweave.test/pikachu.json"},
}

func TestBuyPack_Success(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)

	out, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet})
	if err != nil {
		t.Fatalf("BuyPack: %v", err)
	}

	// both transactions are built for, paid by and delivered to the wallet
	if f.fees.calls != 1 || f.fees.payer != testWallet || f.fees.to != testTreasury || f.fees.amt != 50_000_000 {
		t.Errorf("fee transfer = %+v", f.fees)
	}
	if f.minter.payer != testWallet {
		t.Errorf("mint payer = %q, want the connected wallet", f.minter.payer)
	}
	if got := strings.Join(f.submitter.sent, ","); got != "fee,mint" {
		t.Errorf("sent %s", got)
	}
	if got := strings.Join(f.confirmer.calls, ","); got != "feeSig,mintSig" {
		t.Errorf("confirmed %s", got)
	}
	if got := strings.Join(f.confirmer.comms, ","); got != "processed,confirmed" {
		t.Errorf("commitments %s", got)
	}
	want := MintArgs{Title: "Pikachu", Symbol: "PKMN", URI: "https://arweave.test/pikachu.json", Name: "Pikachu"}
	if f.minter.args != want {
		t.Errorf("mint args = %+v", f.minter.args)
	}
	if out.Message != "You got Pikachu! NFT minted successfully." {
		t.Errorf("Message = %q", out.Message)
	}
	if out.ReceiptID != "r-1" || out.MintAddress != "mintAddr" || out.FeeSignature != "feeSig" || out.MintSignature != "mintSig" {
		t.Errorf("outcome = %+v", out)
	}

	rec, err := f.uc.GetReceipt(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("GetReceipt: %v", err)
	}
	if rec.Status != receiptdom.StatusMinted || rec.Wallet != testWallet || rec.MintSignature != "mintSig" || rec.FeeSignature != "feeSig" {
		t.Errorf("receipt = %+v", rec)
	}
	if len(f.notifier.sent) != 0 {
		t.Error("notifier called on success")
	}
	if f.uc.orders.len() != 0 {
		t.Error("submitted order still pending")
	}
}

func TestBuyPack_ConfirmHasNoDeadlineOfItsOwn(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)

	if _, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet}); err != nil {
		t.Fatalf("BuyPack: %v", err)
	}
	if len(f.confirmer.deadlines) != 2 {
		t.Fatalf("confirmations = %d", len(f.confirmer.deadlines))
	}
	for i, has := range f.confirmer.deadlines {
		if has {
			t.Errorf("confirmation %d got a deadline the caller never set", i)
		}
	}
}

func TestBuyPack_WalletNotConnected(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)

	for _, w := range []WalletSession{nil, fakeSession{}} {
		if _, err := f.uc.BuyPack(context.Background(), w); !errors.Is(err, ErrWalletNotConnected) {
			t.Errorf("expected ErrWalletNotConnected, got %v", err)
		}
	}
	if _, err := f.uc.PreparePack(context.Background(), " "); !errors.Is(err, ErrWalletNotConnected) {
		t.Errorf("PreparePack: expected ErrWalletNotConnected, got %v", err)
	}
	if f.fees.calls != 0 || f.minter.calls != 0 || len(f.submitter.sent) != 0 {
		t.Error("chain touched without a wallet")
	}
}

func TestBuyPack_WalletRefusesToSign(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)

	_, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet, err: errors.New("user rejected the request")})
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	if len(f.submitter.sent) != 0 {
		t.Error("unsigned transactions were sent")
	}
	if f.uc.orders.len() != 0 {
		t.Error("abandoned order kept")
	}
	if len(f.receipts.byID) != 0 {
		t.Error("receipt opened although nothing was charged")
	}
}

func TestBuyPack_FeeFailureSkipsMint(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)
	f.submitter.sendErrs["fee"] = errors.New("insufficient funds")

	_, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet})
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	if got := strings.Join(f.submitter.sent, ","); got != "fee" {
		t.Errorf("sent %s, want only the fee", got)
	}

	rec, _ := f.receipts.GetByID(context.Background(), "r-1")
	if rec.Status != receiptdom.StatusFailed || rec.FailureStage != receiptdom.StageFee {
		t.Errorf("receipt = %+v", rec)
	}
	if len(f.notifier.sent) != 0 {
		t.Error("no fee was charged, nothing to review")
	}
}

func TestBuyPack_FeeConfirmFailure(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)
	f.confirmer.errs["feeSig"] = context.DeadlineExceeded

	_, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet})
	if !errors.Is(err, ErrTransactionFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("unexpected error %v", err)
	}
	if got := strings.Join(f.submitter.sent, ","); got != "fee" {
		t.Errorf("sent %s; mint must wait for fee confirmation", got)
	}
}

func TestBuyPack_MintFailureAfterFeeIsNotRefunded(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)
	f.submitter.sendErrs["mint"] = &logsErr{msg: "custom program error: 0x1", logs: []string{"Program log: boom"}}

	_, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet})
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	if got := strings.Join(f.submitter.sent, ","); got != "fee,mint" {
		t.Errorf("sent %s, want fee then mint and no refund", got)
	}
	if f.fees.calls != 1 {
		t.Errorf("fee transfers built = %d, want exactly 1", f.fees.calls)
	}

	rec, _ := f.receipts.GetByID(context.Background(), "r-1")
	if rec.Status != receiptdom.StatusFailed || rec.FailureStage != receiptdom.StageMint {
		t.Errorf("receipt = %+v", rec)
	}
	if rec.FeeSignature != "feeSig" {
		t.Errorf("fee signature lost: %+v", rec)
	}
	if len(rec.ProgramLogs) != 1 || rec.ProgramLogs[0] != "Program log: boom" {
		t.Errorf("ProgramLogs = %v", rec.ProgramLogs)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].ID != "r-1" {
		t.Errorf("refund review notices = %+v", f.notifier.sent)
	}

	entries := f.logs.FilterMessage("buy pack failed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d failure logs", len(entries))
	}
	if _, ok := entries[0].ContextMap()["programLogs"]; !ok {
		t.Error("program logs not logged")
	}
}

func TestBuyPack_MintConfirmFailure(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)
	f.confirmer.errs["mintSig"] = errors.New("transaction failed")

	if _, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet}); !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
	if got := f.receipts.updates; len(got) != 2 || got[0] != receiptdom.StatusFeeCharged || got[1] != receiptdom.StatusFailed {
		t.Errorf("status updates = %v", got)
	}
}

func TestBuyPack_SelfServedMetadataURI(t *testing.T) {
	f := newMintFixture(t, []catalogdom.MappingEntry{{Name: "Pikachu"}})

	out, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet})
	if err != nil {
		t.Fatalf("BuyPack: %v", err)
	}
	if out.MetadataURI != "https://mint.test/metadata/Pikachu.json" {
		t.Errorf("MetadataURI = %q", out.MetadataURI)
	}
}

func TestBuyPack_NoMetadataURI(t *testing.T) {
	f := newMintFixture(t, []catalogdom.MappingEntry{{Name: "Pikachu"}})
	f.uc.resolver = NewMetadataResolver(nil, nil, "")

	_, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet})
	if !errors.Is(err, ErrNoMetadataURI) {
		t.Fatalf("expected ErrNoMetadataURI, got %v", err)
	}
	if f.fees.calls != 0 || len(f.submitter.sent) != 0 {
		t.Error("fee prepared without a metadata uri")
	}
}

func TestPreparePack_ThenSubmit(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)
	ctx := context.Background()

	order, err := f.uc.PreparePack(ctx, testWallet)
	if err != nil {
		t.Fatalf("PreparePack: %v", err)
	}
	if order.ID != "r-1" || order.Wallet != testWallet || order.MintAddress != "mintAddr" || order.FeeLamports != 50_000_000 {
		t.Errorf("order = %+v", order)
	}
	if string(order.FeeTransaction) != "fee-tx" || string(order.MintTransaction) != "mint-tx" {
		t.Errorf("transactions = %q, %q", order.FeeTransaction, order.MintTransaction)
	}
	if !order.ExpiresAt.Equal(f.now.Add(60 * time.Second)) {
		t.Errorf("ExpiresAt = %v", order.ExpiresAt)
	}
	if len(f.submitter.sent) != 0 || len(f.receipts.byID) != 0 {
		t.Error("preparing a pack must not send or record anything")
	}

	out, err := f.uc.SubmitPack(ctx, testWallet, order.ID,
		fakeSign(order.FeeTransaction, testWallet), fakeSign(order.MintTransaction, testWallet))
	if err != nil {
		t.Fatalf("SubmitPack: %v", err)
	}
	if out.Collectible != "Pikachu" || out.MintAddress != "mintAddr" {
		t.Errorf("outcome = %+v", out)
	}

	// an order is used once
	_, err = f.uc.SubmitPack(ctx, testWallet, order.ID,
		fakeSign(order.FeeTransaction, testWallet), fakeSign(order.MintTransaction, testWallet))
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("replay: expected ErrOrderNotFound, got %v", err)
	}
}

func TestSubmitPack_RejectsBadSignaturesBeforeSending(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)
	ctx := context.Background()

	order, err := f.uc.PreparePack(ctx, testWallet)
	if err != nil {
		t.Fatalf("PreparePack: %v", err)
	}
	// a valid fee but a tampered mint transaction
	_, err = f.uc.SubmitPack(ctx, testWallet, order.ID,
		fakeSign(order.FeeTransaction, testWallet), []byte("mint-tx"))
	if !errors.Is(err, ErrSignatureRejected) {
		t.Fatalf("expected ErrSignatureRejected, got %v", err)
	}
	if len(f.submitter.sent) != 0 {
		t.Errorf("sent %v although the mint transaction was rejected", f.submitter.sent)
	}
	if len(f.receipts.byID) != 0 {
		t.Error("receipt opened for a rejected submission")
	}
}

func TestSubmitPack_OtherWalletOrExpired(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)
	ctx := context.Background()
	const otherWallet = "So11111111111111111111111111111111111111112"

	order, err := f.uc.PreparePack(ctx, testWallet)
	if err != nil {
		t.Fatalf("PreparePack: %v", err)
	}
	_, err = f.uc.SubmitPack(ctx, otherWallet, order.ID,
		fakeSign(order.FeeTransaction, otherWallet), fakeSign(order.MintTransaction, otherWallet))
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("other wallet: expected ErrOrderNotFound, got %v", err)
	}
	if f.uc.orders.len() != 1 {
		t.Error("another wallet's attempt consumed the order")
	}

	f.now = f.now.Add(2 * time.Minute)
	_, err = f.uc.SubmitPack(ctx, testWallet, order.ID,
		fakeSign(order.FeeTransaction, testWallet), fakeSign(order.MintTransaction, testWallet))
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expired: expected ErrOrderNotFound, got %v", err)
	}
	if len(f.submitter.sent) != 0 {
		t.Error("expired order was sent")
	}
}

func TestPreparePack_PendingOrderLimit(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)
	f.uc.orders = newOrderBook(2)
	n := 0
	f.uc.newID = func() string { n++; return "order-" + string(rune('0'+n)) }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.uc.PreparePack(ctx, testWallet); err != nil {
			t.Fatalf("PreparePack %d: %v", i, err)
		}
	}
	if _, err := f.uc.PreparePack(ctx, testWallet); !errors.Is(err, ErrTooManyOrders) {
		t.Fatalf("expected ErrTooManyOrders, got %v", err)
	}

	// expired orders make room again
	f.now = f.now.Add(2 * time.Minute)
	if _, err := f.uc.PreparePack(ctx, testWallet); err != nil {
		t.Errorf("after expiry: %v", err)
	}
}

func TestResolve_UploadsGeneratedMetadata(t *testing.T) {
	up := &fakeUploader{uri: "https://arweave.net/abc"}
	r := NewMetadataResolver(fakeArtwork{}, up, "https://mint.test")
	pick := catalogdom.Pick{
		Entry:       catalogdom.MappingEntry{Name: "Pikachu"},
		Collectible: catalogdom.Collectible{Name: "Pikachu", Type: "electric", HP: 35},
		Variant:     catalogdom.VariantShining,
	}

	uri, err := r.Resolve(context.Background(), pick, testWallet)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if uri != "https://arweave.net/abc" {
		t.Errorf("uri = %q", uri)
	}
	body := string(up.body)
	for _, want := range []string{
		`"name":"Pikachu Shining Card"`,
		`"image":"https://cdn.test/mons/shiny/Pikachu_nft.png"`,
		`"address":"` + testWallet + `"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("uploaded metadata missing %s: %s", want, body)
		}
	}
}

func TestResolve_MappedLinkWins(t *testing.T) {
	up := &fakeUploader{uri: "https://arweave.net/abc"}
	r := NewMetadataResolver(fakeArtwork{}, up, "")
	pick := catalogdom.Pick{
		Entry:   catalogdom.MappingEntry{Name: "Pikachu", MetadataLink: "a", ShiningMetadataLink: "b"},
		Variant: catalogdom.VariantShining,
	}
	uri, err := r.Resolve(context.Background(), pick, "")
	if err != nil || uri != "b" {
		t.Fatalf("got %q, %v", uri, err)
	}
	if up.body != nil {
		t.Error("uploader used despite a mapped link")
	}
}

func TestMetadataPath(t *testing.T) {
	if got := MetadataPath("Mr. Mime", catalogdom.VariantRegular); got != "/metadata/Mr.%20Mime.json" {
		t.Errorf("regular = %q", got)
	}
	if got := MetadataPath("Pikachu", catalogdom.VariantShining); got != "/metadata/shiny/Pikachu.json" {
		t.Errorf("shining = %q", got)
	}
}

func TestListReceipts(t *testing.T) {
	f := newMintFixture(t, pikachuMapping)
	if _, err := f.uc.BuyPack(context.Background(), fakeSession{addr: testWallet}); err != nil {
		t.Fatalf("BuyPack: %v", err)
	}
	list, err := f.uc.ListReceipts(context.Background(), testWallet, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("got %v, %v", list, err)
	}
	if _, err := f.uc.GetReceipt(context.Background(), "missing"); !errors.Is(err, receiptdom.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
