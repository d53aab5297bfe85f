// internal/application/usecase/mint_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogdom "pokemint/internal/domain/catalog"
	nftdom "pokemint/internal/domain/nft"
	receiptdom "pokemint/internal/domain/receipt"
	"pokemint/internal/infra/logger"
)

var (
	ErrWalletNotConnected = errors.New("mint: wallet not connected")
	ErrTransactionFailed  = errors.New("mint: transaction failed")
	ErrOrderNotFound      = errors.New("mint: pack order not found or expired")
	ErrSignatureRejected  = errors.New("mint: signed transaction rejected")
	ErrTooManyOrders      = errors.New("mint: too many pending pack orders")
)

// MintConfig holds the buy-pack parameters.
type MintConfig struct {
	Treasury       string
	FeeLamports    uint64
	FeeCommitment  string // commitment the fee transfer must reach before minting
	MintCommitment string

	// OrderTTL is how long a prepared pack waits for the wallet's
	// signatures. It stays under the blockhash lifetime.
	OrderTTL         time.Duration
	MaxPendingOrders int
}

func (c MintConfig) withDefaults() MintConfig {
	if c.FeeCommitment == "" {
		c.FeeCommitment = "processed"
	}
	if c.MintCommitment == "" {
		c.MintCommitment = "confirmed"
	}
	if c.OrderTTL <= 0 {
		c.OrderTTL = 60 * time.Second
	}
	if c.MaxPendingOrders <= 0 {
		c.MaxPendingOrders = 10_000
	}
	return c
}

// MintOutcome is what the buyer is told after a successful pack.
type MintOutcome struct {
	ReceiptID     string `json:"receiptId,omitempty"`
	Collectible   string `json:"collectible"`
	Shining       bool   `json:"shining"`
	MetadataURI   string `json:"metadataUri"`
	FeeSignature  string `json:"feeSignature"`
	MintAddress   string `json:"mintAddress"`
	MintSignature string `json:"mintSignature"`
	Message       string `json:"message"`
}

// MintUsecase runs the buy-pack workflow for a connected wallet: fee
// transfer, confirmation, program mint, confirmation. The wallet pays and
// signs both transactions and receives the NFT. A fee charged before a
// failed mint is not refunded; the receipt and operator notice record it.
type MintUsecase struct {
	picker    *catalogdom.Picker
	resolver  *MetadataResolver
	fees      FeeCharger
	minter    Minter
	submitter TxSubmitter
	confirmer Confirmer
	cfg       MintConfig
	orders    *orderBook

	// optional
	receipts receiptdom.Repository
	notifier RefundReviewNotifier

	newID func() string
	now   func() time.Time
	log   *zap.Logger
}

func NewMintUsecase(
	picker *catalogdom.Picker,
	resolver *MetadataResolver,
	fees FeeCharger,
	minter Minter,
	submitter TxSubmitter,
	confirmer Confirmer,
	cfg MintConfig,
	log *zap.Logger,
) *MintUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &MintUsecase{
		picker:    picker,
		resolver:  resolver,
		fees:      fees,
		minter:    minter,
		submitter: submitter,
		confirmer: confirmer,
		cfg:       cfg,
		orders:    newOrderBook(cfg.MaxPendingOrders),
		newID:     uuid.NewString,
		now:       time.Now,
		log:       log.Named("mint"),
	}
}

func (u *MintUsecase) WithReceipts(r receiptdom.Repository) *MintUsecase {
	u.receipts = r
	return u
}

func (u *MintUsecase) WithNotifier(n RefundReviewNotifier) *MintUsecase {
	u.notifier = n
	return u
}

func (u *MintUsecase) configured() bool {
	return u != nil && u.picker != nil && u.fees != nil && u.minter != nil &&
		u.submitter != nil && u.confirmer != nil
}

// BuyPack prepares a pack for wallet, has the wallet sign it and submits
// it. Every failure after the wallet check is reported as
// ErrTransactionFailed.
func (u *MintUsecase) BuyPack(ctx context.Context, wallet WalletSession) (MintOutcome, error) {
	if wallet == nil || strings.TrimSpace(wallet.Address()) == "" {
		return MintOutcome{}, ErrWalletNotConnected
	}
	order, err := u.PreparePack(ctx, wallet.Address())
	if err != nil {
		return MintOutcome{}, err
	}

	signed, err := wallet.SignTransactions(ctx, [][]byte{order.FeeTransaction, order.MintTransaction})
	if err == nil && len(signed) != 2 {
		err = fmt.Errorf("wallet returned %d transactions, want 2", len(signed))
	}
	if err != nil {
		u.orders.drop(order.ID)
		return MintOutcome{}, u.fail(ctx, nil, "", fmt.Errorf("sign: %w", err))
	}
	return u.SubmitPack(ctx, order.Wallet, order.ID, signed[0], signed[1])
}

// PreparePack picks a card for walletAddress and builds the fee transfer
// and the mint transaction for the wallet to sign. Nothing is sent and no
// receipt is opened until SubmitPack.
func (u *MintUsecase) PreparePack(ctx context.Context, walletAddress string) (PackOrder, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return PackOrder{}, ErrWalletNotConnected
	}
	payer, err := nftdom.ValidateAddress(walletAddress)
	if err != nil {
		return PackOrder{}, err
	}
	if !u.configured() {
		return PackOrder{}, errors.New("mint usecase: not configured")
	}

	// 1) choose the card
	pick, err := u.picker.Pick()
	if err != nil {
		return PackOrder{}, u.fail(ctx, nil, "", err)
	}
	uri, err := u.resolver.Resolve(ctx, pick, payer)
	if err != nil {
		return PackOrder{}, u.fail(ctx, nil, "", err)
	}

	// 2) transactions, both paid by the wallet
	feeTx, err := u.fees.BuildFeeTransfer(ctx, payer, u.cfg.Treasury, u.cfg.FeeLamports)
	if err != nil {
		return PackOrder{}, u.fail(ctx, nil, "", err)
	}
	name := pick.Entry.Name
	mint, err := u.minter.BuildMint(ctx, payer, MintArgs{
		Title:  name,
		Symbol: nftdom.CollectibleSymbol,
		URI:    uri,
		Name:   name,
	})
	if err != nil {
		return PackOrder{}, u.fail(ctx, nil, "", err)
	}

	now := u.now()
	order := &PackOrder{
		ID:              u.newID(),
		Wallet:          payer,
		FeeLamports:     u.cfg.FeeLamports,
		FeeTransaction:  feeTx,
		MintTransaction: mint.Tx,
		MintAddress:     mint.MintAddress,
		ExpiresAt:       now.Add(u.cfg.OrderTTL),
		pick:            pick,
		uri:             uri,
	}
	if err := u.orders.put(order, now); err != nil {
		u.log.Warn("pack order not stored", zap.Error(err))
		return PackOrder{}, err
	}

	u.log.Info("pack prepared",
		zap.String("order", order.ID),
		zap.String("wallet", logger.MaskShort(payer)),
		zap.String("mint", mint.MintAddress),
	)
	return *order, nil
}

// SubmitPack sends a prepared pack once the wallet has signed both
// transactions. The order is consumed whatever the outcome.
func (u *MintUsecase) SubmitPack(ctx context.Context, walletAddress, orderID string, signedFee, signedMint []byte) (MintOutcome, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return MintOutcome{}, ErrWalletNotConnected
	}
	wallet, err := nftdom.ValidateAddress(walletAddress)
	if err != nil {
		return MintOutcome{}, err
	}
	if !u.configured() {
		return MintOutcome{}, errors.New("mint usecase: not configured")
	}

	order, err := u.orders.take(strings.TrimSpace(orderID), wallet, u.now())
	if err != nil {
		return MintOutcome{}, err
	}

	// Both are checked before anything is sent: a bad mint signature must
	// not leave a charged fee behind.
	if err := u.submitter.Verify(order.FeeTransaction, signedFee, wallet); err != nil {
		return MintOutcome{}, u.reject(order, "fee", err)
	}
	if err := u.submitter.Verify(order.MintTransaction, signedMint, wallet); err != nil {
		return MintOutcome{}, u.reject(order, "mint", err)
	}

	return u.execute(ctx, order, signedFee, signedMint)
}

func (u *MintUsecase) reject(order *PackOrder, which string, cause error) error {
	u.log.Warn("signed transaction rejected",
		zap.String("order", order.ID),
		zap.String("tx", which),
		zap.String("wallet", logger.MaskShort(order.Wallet)),
		zap.Error(cause),
	)
	return fmt.Errorf("%w: %s: %w", ErrSignatureRejected, which, cause)
}

func (u *MintUsecase) execute(ctx context.Context, order *PackOrder, signedFee, signedMint []byte) (MintOutcome, error) {
	pick := order.pick
	rec := u.openReceipt(ctx, order.ID, order.Wallet, pick, order.uri)

	// 3) fee
	feeSig, err := u.submitter.Send(ctx, signedFee)
	if err == nil {
		err = u.confirmer.Confirm(ctx, feeSig, u.cfg.FeeCommitment)
	}
	if err != nil {
		return MintOutcome{}, u.fail(ctx, rec, receiptdom.StageFee, err)
	}
	if rec != nil {
		if err := rec.MarkFeeCharged(feeSig, u.now()); err == nil {
			u.saveReceipt(ctx, rec)
		}
	}

	// 4) mint
	mintSig, err := u.submitter.Send(ctx, signedMint)
	if err == nil {
		err = u.confirmer.Confirm(ctx, mintSig, u.cfg.MintCommitment)
	}
	if err != nil {
		return MintOutcome{}, u.fail(ctx, rec, receiptdom.StageMint, err)
	}

	name := pick.Entry.Name
	out := MintOutcome{
		Collectible:   name,
		Shining:       pick.Variant == catalogdom.VariantShining,
		MetadataURI:   order.uri,
		FeeSignature:  feeSig,
		MintAddress:   order.MintAddress,
		MintSignature: mintSig,
		Message:       fmt.Sprintf("You got %s! NFT minted successfully.", name),
	}
	if rec != nil {
		out.ReceiptID = rec.ID
		if err := rec.MarkMinted(order.MintAddress, mintSig, u.now()); err == nil {
			u.saveReceipt(ctx, rec)
		}
	}

	u.log.Info("NFT minted",
		zap.String("wallet", logger.MaskShort(order.Wallet)),
		zap.String("collectible", name),
		zap.Bool("shining", out.Shining),
		zap.String("mint", order.MintAddress),
		zap.String("tx", mintSig),
	)
	return out, nil
}

// fail logs the cause with any program logs, closes the receipt and, when
// the fee was already charged, notifies an operator. It never refunds.
func (u *MintUsecase) fail(ctx context.Context, rec *receiptdom.MintReceipt, stage receiptdom.Stage, cause error) error {
	var logs []string
	var carrier programLogCarrier
	if errors.As(cause, &carrier) {
		logs = carrier.ProgramLogs()
	}

	fields := []zap.Field{zap.Error(cause)}
	if stage != "" {
		fields = append(fields, zap.String("stage", string(stage)))
	}
	if rec != nil {
		fields = append(fields, zap.String("receipt", rec.ID), zap.String("wallet", logger.MaskShort(rec.Wallet)))
	}
	if len(logs) > 0 {
		fields = append(fields, zap.Strings("programLogs", logs))
	}
	u.log.Error("buy pack failed", fields...)

	if rec != nil {
		if err := rec.MarkFailed(stage, cause.Error(), logs, u.now()); err == nil {
			u.saveReceipt(ctx, rec)
		}
		if rec.NeedsRefundReview() && u.notifier != nil {
			if err := u.notifier.NotifyRefundReview(context.WithoutCancel(ctx), *rec); err != nil {
				u.log.Warn("refund review notice failed", zap.String("receipt", rec.ID), zap.Error(err))
			}
		}
	}

	return fmt.Errorf("%w: %w", ErrTransactionFailed, cause)
}

// openReceipt records the pack under the order's id.
func (u *MintUsecase) openReceipt(ctx context.Context, id, wallet string, pick catalogdom.Pick, uri string) *receiptdom.MintReceipt {
	if u.receipts == nil {
		return nil
	}
	rec, err := receiptdom.New(
		id,
		wallet,
		pick.Entry.Name,
		pick.Variant == catalogdom.VariantShining,
		uri,
		u.cfg.FeeLamports,
		u.cfg.Treasury,
		u.now(),
	)
	if err != nil {
		u.log.Warn("receipt not created", zap.Error(err))
		return nil
	}
	if _, err := u.receipts.Create(ctx, rec); err != nil {
		// keep tracking in memory so later updates still get a chance to land
		u.log.Warn("receipt create failed", zap.String("receipt", rec.ID), zap.Error(err))
	}
	return &rec
}

func (u *MintUsecase) saveReceipt(ctx context.Context, rec *receiptdom.MintReceipt) {
	if u.receipts == nil || rec == nil {
		return
	}
	if _, err := u.receipts.Update(context.WithoutCancel(ctx), *rec); err != nil {
		u.log.Warn("receipt update failed",
			zap.String("receipt", rec.ID),
			zap.String("status", string(rec.Status)),
			zap.Error(err),
		)
	}
}

// ============================================================
// Receipts (operator view)
// ============================================================

func (u *MintUsecase) GetReceipt(ctx context.Context, id string) (receiptdom.MintReceipt, error) {
	if u == nil || u.receipts == nil {
		return receiptdom.MintReceipt{}, receiptdom.ErrNotFound
	}
	return u.receipts.GetByID(ctx, strings.TrimSpace(id))
}

func (u *MintUsecase) ListReceipts(ctx context.Context, wallet string, limit int) ([]receiptdom.MintReceipt, error) {
	addr, err := nftdom.ValidateAddress(wallet)
	if err != nil {
		return nil, err
	}
	if u == nil || u.receipts == nil {
		return []receiptdom.MintReceipt{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.receipts.ListByWallet(ctx, addr, limit)
}
