package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"

	nftdom "pokemint/internal/domain/nft"
	receiptdom "pokemint/internal/domain/receipt"
)

const (
	testWallet   = "8rrF7VycfSHR48iQ7HXTRwHaNJNf2p2MkA5fHf5KDSJ"
	testTreasury = "6X7Dmx74WDrQtTRqaGZykdRvLh9LTCwR9WPQKtoJpNSE"
)

// fakeSession "signs" by appending "|signed-by:<addr>" to each transaction.
type fakeSession struct {
	addr string
	err  error
}

func (f fakeSession) Address() string { return f.addr }

func (f fakeSession) SignTransactions(ctx context.Context, txs [][]byte) ([][]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]byte, len(txs))
	for i, tx := range txs {
		out[i] = fakeSign(tx, f.addr)
	}
	return out, nil
}

func fakeSign(tx []byte, addr string) []byte {
	return append(append([]byte(nil), tx...), []byte("|signed-by:"+addr)...)
}

type fakeReader struct {
	nfts []nftdom.OnchainNFT
	err  error
}

func (f *fakeReader) FindAllByOwner(ctx context.Context, wallet string) ([]nftdom.OnchainNFT, error) {
	return f.nfts, f.err
}

type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]nftdom.OffchainMetadata
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, uri string) (nftdom.OffchainMetadata, error) {
	f.mu.Lock()
	f.calls = append(f.calls, uri)
	f.mu.Unlock()
	if err := f.errs[uri]; err != nil {
		return nftdom.OffchainMetadata{}, err
	}
	doc, ok := f.docs[uri]
	if !ok {
		return nftdom.OffchainMetadata{}, errors.New("404")
	}
	return doc, nil
}

type fakeFees struct {
	err   error
	calls int
	payer string
	to    string
	amt   uint64
}

func (f *fakeFees) BuildFeeTransfer(ctx context.Context, payer, treasury string, lamports uint64) ([]byte, error) {
	f.calls++
	f.payer = payer
	f.to = treasury
	f.amt = lamports
	if f.err != nil {
		return nil, f.err
	}
	return []byte("fee-tx"), nil
}

type fakeMinter struct {
	err   error
	calls int
	payer string
	args  MintArgs
}

func (f *fakeMinter) BuildMint(ctx context.Context, payer string, args MintArgs) (PreparedMint, error) {
	f.calls++
	f.payer = payer
	f.args = args
	if f.err != nil {
		return PreparedMint{}, f.err
	}
	return PreparedMint{Tx: []byte("mint-tx"), MintAddress: "mintAddr", Metadata: "md", MasterEdition: "me"}, nil
}

// fakeSubmitter accepts transactions signed with fakeSign and answers
// "feeSig" / "mintSig" depending on which prepared transaction was sent.
type fakeSubmitter struct {
	mu       sync.Mutex
	sendErrs map[string]error // keyed by "fee" / "mint"
	sent     []string
}

func (f *fakeSubmitter) Verify(prepared, signed []byte, signer string) error {
	if !bytes.Equal(signed, fakeSign(prepared, signer)) {
		return errors.New("signature mismatch")
	}
	return nil
}

func (f *fakeSubmitter) Send(ctx context.Context, signed []byte) (string, error) {
	kind := strings.TrimSuffix(strings.SplitN(string(signed), "|", 2)[0], "-tx")
	f.mu.Lock()
	f.sent = append(f.sent, kind)
	f.mu.Unlock()
	if err := f.sendErrs[kind]; err != nil {
		return "", err
	}
	return kind + "Sig", nil
}

type fakeConfirmer struct {
	errs      map[string]error
	calls     []string
	comms     []string
	deadlines []bool
}

func (f *fakeConfirmer) Confirm(ctx context.Context, sig, commitment string) error {
	f.calls = append(f.calls, sig)
	f.comms = append(f.comms, commitment)
	_, has := ctx.Deadline()
	f.deadlines = append(f.deadlines, has)
	return f.errs[sig]
}

type fakeReceipts struct {
	mu      sync.Mutex
	byID    map[string]receiptdom.MintReceipt
	updates []receiptdom.Status
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{byID: map[string]receiptdom.MintReceipt{}}
}

func (f *fakeReceipts) Create(ctx context.Context, r receiptdom.MintReceipt) (receiptdom.MintReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[r.ID] = r
	return r, nil
}

func (f *fakeReceipts) Update(ctx context.Context, r receiptdom.MintReceipt) (receiptdom.MintReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[r.ID]; !ok {
		return receiptdom.MintReceipt{}, receiptdom.ErrNotFound
	}
	f.byID[r.ID] = r
	f.updates = append(f.updates, r.Status)
	return r, nil
}

func (f *fakeReceipts) GetByID(ctx context.Context, id string) (receiptdom.MintReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return receiptdom.MintReceipt{}, receiptdom.ErrNotFound
	}
	return r, nil
}

func (f *fakeReceipts) ListByWallet(ctx context.Context, wallet string, limit int) ([]receiptdom.MintReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []receiptdom.MintReceipt
	for _, r := range f.byID {
		if r.Wallet == wallet {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	sent []receiptdom.MintReceipt
}

func (f *fakeNotifier) NotifyRefundReview(ctx context.Context, r receiptdom.MintReceipt) error {
	f.sent = append(f.sent, r)
	return nil
}

type fakeUploader struct {
	body []byte
	uri  string
}

func (f *fakeUploader) UploadJSON(ctx context.Context, b []byte) (string, error) {
	f.body = b
	return f.uri, nil
}

type fakeArtwork struct {
	missing map[string]bool
}

func (f fakeArtwork) PublicURL(path string) string { return "https://cdn.test" + path }

func (f fakeArtwork) Exists(ctx context.Context, path string) (bool, error) {
	return !f.missing[path], nil
}

type logsErr struct {
	msg  string
	logs []string
}

func (e *logsErr) Error() string         { return e.msg }
func (e *logsErr) ProgramLogs() []string { return e.logs }
