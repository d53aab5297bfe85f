// internal/application/usecase/collection_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	catalogdom "pokemint/internal/domain/catalog"
	nftdom "pokemint/internal/domain/nft"
	sessiondom "pokemint/internal/domain/session"
	"pokemint/internal/infra/logger"
)

// LamportsPerSOL converts lamports to SOL for display.
const LamportsPerSOL = 1_000_000_000

// CollectionUsecase serves the "available" and "owned" views.
type CollectionUsecase struct {
	reader  NFTReader
	fetcher MetadataFetcher

	// optional
	balances BalanceReader
	catalog  *catalogdom.Catalog
	artwork  ArtworkRepository
	sessions *sessiondom.Store

	log *zap.Logger
}

func NewCollectionUsecase(reader NFTReader, fetcher MetadataFetcher, log *zap.Logger) *CollectionUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CollectionUsecase{
		reader:  reader,
		fetcher: fetcher,
		log:     log.Named("collection"),
	}
}

func (u *CollectionUsecase) WithBalanceReader(b BalanceReader) *CollectionUsecase {
	u.balances = b
	return u
}

func (u *CollectionUsecase) WithCatalog(c *catalogdom.Catalog, artwork ArtworkRepository) *CollectionUsecase {
	u.catalog = c
	u.artwork = artwork
	return u
}

func (u *CollectionUsecase) WithSessions(s *sessiondom.Store) *CollectionUsecase {
	u.sessions = s
	return u
}

// ============================================================
// Owned view
// ============================================================

// ListOwned returns the collection NFTs held by walletAddress.
//
// Enumeration failures are logged and yield an empty list. Metadata is
// fetched for all matching NFTs concurrently; an item whose fetch fails is
// logged and dropped without affecting the others. The only error returned
// is nftdom.ErrInvalidAddress.
func (u *CollectionUsecase) ListOwned(ctx context.Context, walletAddress string) ([]nftdom.OwnedItem, error) {
	addr, err := nftdom.ValidateAddress(walletAddress)
	if err != nil {
		return nil, err
	}
	if u == nil || u.reader == nil || u.fetcher == nil {
		return nil, errors.New("collection usecase: not configured")
	}

	onchain, err := u.reader.FindAllByOwner(ctx, addr)
	if err != nil {
		u.log.Error("error fetching NFTs",
			zap.String("wallet", logger.MaskShort(addr)),
			zap.Error(err),
		)
		return []nftdom.OwnedItem{}, nil
	}

	matching := make([]nftdom.OnchainNFT, 0, len(onchain))
	for _, n := range onchain {
		if nftdom.MatchesSymbol(n.Symbol) {
			matching = append(matching, n)
		}
	}

	results := make([]*nftdom.OwnedItem, len(matching))
	var g errgroup.Group
	for i, n := range matching {
		g.Go(func() error {
			item, err := u.loadItem(ctx, n)
			if err != nil {
				u.log.Warn("error loading NFT metadata",
					zap.String("mint", n.Mint),
					zap.String("uri", n.URI),
					zap.Error(err),
				)
				return nil
			}
			results[i] = &item
			return nil
		})
	}
	_ = g.Wait()

	out := make([]nftdom.OwnedItem, 0, len(results))
	for _, it := range results {
		if it != nil {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (u *CollectionUsecase) loadItem(ctx context.Context, n nftdom.OnchainNFT) (nftdom.OwnedItem, error) {
	if strings.TrimSpace(n.URI) == "" {
		return nftdom.OwnedItem{}, nftdom.ErrEmptyURI
	}
	meta, err := u.fetcher.Fetch(ctx, n.URI)
	if err != nil {
		return nftdom.OwnedItem{}, err
	}
	return nftdom.NewOwnedItem(n, meta), nil
}

// ============================================================
// Balance
// ============================================================

type Balance struct {
	Wallet   string  `json:"wallet"`
	Lamports uint64  `json:"lamports"`
	SOL      float64 `json:"sol"`
}

func (u *CollectionUsecase) Balance(ctx context.Context, walletAddress string) (Balance, error) {
	addr, err := nftdom.ValidateAddress(walletAddress)
	if err != nil {
		return Balance{}, err
	}
	if u == nil || u.balances == nil {
		return Balance{}, errors.New("collection usecase: balance reader not configured")
	}
	lamports, err := u.balances.GetBalance(ctx, addr)
	if err != nil {
		return Balance{}, err
	}
	return Balance{
		Wallet:   addr,
		Lamports: lamports,
		SOL:      float64(lamports) / LamportsPerSOL,
	}, nil
}

// ============================================================
// Available view
// ============================================================

// CatalogItem is one card in the "available" view.
type CatalogItem struct {
	catalogdom.Collectible
	Variant    catalogdom.Variant `json:"variant"`
	ImageURL   string             `json:"imageUrl"`
	ImageKey   string             `json:"imageKey"`
	ImageError bool               `json:"imageError"`
}

type AvailableView struct {
	Pokemon []CatalogItem `json:"pokemon"`
	Shining []CatalogItem `json:"shining"`
}

// Available lists the catalog for a session. Items whose artwork is missing
// from storage are marked as image errors in the session, which then stay
// marked for the session's lifetime.
func (u *CollectionUsecase) Available(ctx context.Context, sessionID string) (AvailableView, error) {
	if u == nil || u.catalog == nil {
		return AvailableView{}, catalogdom.ErrEmptyCatalog
	}

	view := AvailableView{
		Pokemon: u.catalogItems(u.catalog.Pokemon, catalogdom.VariantRegular),
		Shining: u.catalogItems(u.catalog.Shining, catalogdom.VariantShining),
	}

	if u.sessions == nil {
		return view, nil
	}

	state := u.sessions.Get(sessionID)
	u.probeArtwork(ctx, sessionID, state, view.Pokemon)
	u.probeArtwork(ctx, sessionID, state, view.Shining)

	state = u.sessions.Get(sessionID)
	for i := range view.Pokemon {
		view.Pokemon[i].ImageError = state.HasImageError(view.Pokemon[i].ImageKey)
	}
	for i := range view.Shining {
		view.Shining[i].ImageError = state.HasImageError(view.Shining[i].ImageKey)
	}
	return view, nil
}

func (u *CollectionUsecase) catalogItems(list []catalogdom.Collectible, v catalogdom.Variant) []CatalogItem {
	out := make([]CatalogItem, 0, len(list))
	for _, c := range list {
		path := catalogdom.ImagePath(c.Name, v)
		url := path
		if u.artwork != nil {
			url = u.artwork.PublicURL(path)
		}
		out = append(out, CatalogItem{
			Collectible: c,
			Variant:     v,
			ImageURL:    url,
			ImageKey:    catalogdom.ImageKey(c.Name, v),
		})
	}
	return out
}

// probeArtwork checks storage for every item not already flagged.
func (u *CollectionUsecase) probeArtwork(ctx context.Context, sessionID string, state sessiondom.ViewState, items []CatalogItem) {
	if u.artwork == nil {
		return
	}
	var g errgroup.Group
	g.SetLimit(8)
	for _, it := range items {
		if state.HasImageError(it.ImageKey) {
			continue
		}
		g.Go(func() error {
			ok, err := u.artwork.Exists(ctx, catalogdom.ImagePath(it.Name, it.Variant))
			if err != nil {
				u.log.Debug("artwork probe failed", zap.String("key", it.ImageKey), zap.Error(err))
				return nil
			}
			if !ok {
				_, _ = u.sessions.MarkImageError(sessionID, it.ImageKey)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// MarkImageError records a client-side image load failure.
func (u *CollectionUsecase) MarkImageError(sessionID, key string) (sessiondom.ViewState, error) {
	if u == nil || u.sessions == nil {
		return sessiondom.ViewState{}, errors.New("collection usecase: sessions not configured")
	}
	return u.sessions.MarkImageError(sessionID, key)
}

// SetTab switches the session's active tab.
func (u *CollectionUsecase) SetTab(sessionID, tab string) (sessiondom.ViewState, error) {
	if u == nil || u.sessions == nil {
		return sessiondom.ViewState{}, errors.New("collection usecase: sessions not configured")
	}
	t, err := sessiondom.ParseTab(tab)
	if err != nil {
		return sessiondom.ViewState{}, err
	}
	return u.sessions.SetTab(sessionID, t)
}

// ConnectWallet remembers walletAddress as the session's wallet.
func (u *CollectionUsecase) ConnectWallet(sessionID, walletAddress string) (sessiondom.ViewState, error) {
	addr, err := nftdom.ValidateAddress(walletAddress)
	if err != nil {
		return sessiondom.ViewState{}, err
	}
	if u == nil || u.sessions == nil {
		return sessiondom.ViewState{}, errors.New("collection usecase: sessions not configured")
	}
	return u.sessions.SetWallet(sessionID, addr), nil
}

// Session returns the session's current view state.
func (u *CollectionUsecase) Session(sessionID string) sessiondom.ViewState {
	if u == nil || u.sessions == nil {
		return sessiondom.ViewState{ID: sessionID, ActiveTab: sessiondom.TabAvailable, ImageErrors: map[string]bool{}}
	}
	return u.sessions.Get(sessionID)
}

// TokenMetadata builds the Metaplex JSON for a catalog entry.
func (u *CollectionUsecase) TokenMetadata(name string, v catalogdom.Variant) (TokenMetadata, error) {
	if u == nil || u.catalog == nil {
		return TokenMetadata{}, catalogdom.ErrEmptyCatalog
	}
	c, ok := u.catalog.Find(name, v)
	if !ok {
		return TokenMetadata{}, ErrCollectibleNotFound
	}
	image := catalogdom.ImagePath(c.Name, v)
	if u.artwork != nil {
		image = u.artwork.PublicURL(image)
	}
	return BuildTokenMetadata(c, v, image, ""), nil
}
