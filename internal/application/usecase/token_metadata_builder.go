// internal/application/usecase/token_metadata_builder.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	catalogdom "pokemint/internal/domain/catalog"
	nftdom "pokemint/internal/domain/nft"
)

var (
	ErrCollectibleNotFound = errors.New("metadata: collectible not in catalog")
	ErrNoMetadataURI       = errors.New("metadata: no metadata uri for collectible")
)

// 5% royalty
const defaultSellerFeeBasisPoints = 500

// TokenMetadata is the Metaplex off-chain JSON for one card.
type TokenMetadata struct {
	Name                 string              `json:"name"`
	Symbol               string              `json:"symbol"`
	Description          string              `json:"description"`
	SellerFeeBasisPoints int                 `json:"seller_fee_basis_points"`
	Image                string              `json:"image"`
	Attributes           []MetadataAttribute `json:"attributes"`
	Properties           MetadataProperties  `json:"properties"`
}

type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

type MetadataProperties struct {
	Files    []MetadataFile    `json:"files"`
	Category string            `json:"category"`
	Creators []MetadataCreator `json:"creators,omitempty"`
}

type MetadataFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

type MetadataCreator struct {
	Address string `json:"address"`
	Share   int    `json:"share"`
}

// BuildTokenMetadata renders the card's stats as Metaplex attributes.
// creator may be empty.
func BuildTokenMetadata(c catalogdom.Collectible, v catalogdom.Variant, imageURL, creator string) TokenMetadata {
	rarity := "Regular"
	name := c.Name + " Card"
	if v == catalogdom.VariantShining {
		rarity = "Shining"
		name = c.Name + " Shining Card"
	}

	attrs := []MetadataAttribute{
		{TraitType: "Type", Value: capitalize(c.Type)},
		{TraitType: "HP", Value: c.HP},
		{TraitType: "Attack", Value: c.Attack},
		{TraitType: "Defense", Value: c.Defense},
		{TraitType: "Rarity", Value: rarity},
	}
	for i, a := range c.Attacks {
		attrs = append(attrs,
			MetadataAttribute{TraitType: fmt.Sprintf("Attack %d Name", i+1), Value: a.Name},
			MetadataAttribute{TraitType: fmt.Sprintf("Attack %d Damage", i+1), Value: a.Damage},
		)
	}

	md := TokenMetadata{
		Name:                 name,
		Symbol:               nftdom.CollectibleSymbol,
		Description:          c.Text,
		SellerFeeBasisPoints: defaultSellerFeeBasisPoints,
		Image:                imageURL,
		Attributes:           attrs,
		Properties: MetadataProperties{
			Files:    []MetadataFile{{URI: imageURL, Type: "image/png"}},
			Category: "image",
		},
	}
	if creator = strings.TrimSpace(creator); creator != "" {
		md.Properties.Creators = []MetadataCreator{{Address: creator, Share: 100}}
	}
	return md
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// MetadataPath is the path under which the service itself serves generated
// metadata: /metadata/{name}.json or /metadata/shiny/{name}.json
func MetadataPath(name string, v catalogdom.Variant) string {
	if v == catalogdom.VariantShining {
		return "/metadata/shiny/" + url.PathEscape(name) + ".json"
	}
	return "/metadata/" + url.PathEscape(name) + ".json"
}

// MetadataResolver decides which URI a freshly minted NFT points to.
type MetadataResolver struct {
	artwork       ArtworkRepository
	uploader      ArweaveUploader
	publicBaseURL string
}

func NewMetadataResolver(artwork ArtworkRepository, uploader ArweaveUploader, publicBaseURL string) *MetadataResolver {
	return &MetadataResolver{
		artwork:       artwork,
		uploader:      uploader,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

// Resolve returns, in order of preference:
//  1. the mapped metadata link for the picked variant
//  2. an Arweave upload of generated metadata (when an uploader is set)
//  3. the self-served metadata URL under publicBaseURL
func (r *MetadataResolver) Resolve(ctx context.Context, pick catalogdom.Pick, creator string) (string, error) {
	if link := strings.TrimSpace(pick.MetadataLink()); link != "" {
		return link, nil
	}
	if r == nil || pick.Collectible.Name == "" {
		return "", fmt.Errorf("%w: %s", ErrNoMetadataURI, pick.Entry.Name)
	}

	if r.uploader != nil {
		image := catalogdom.ImagePath(pick.Collectible.Name, pick.Variant)
		if r.artwork != nil {
			image = r.artwork.PublicURL(image)
		}
		body, err := json.Marshal(BuildTokenMetadata(pick.Collectible, pick.Variant, image, creator))
		if err != nil {
			return "", fmt.Errorf("build metadata: %w", err)
		}
		uri, err := r.uploader.UploadJSON(ctx, body)
		if err != nil {
			return "", fmt.Errorf("upload metadata to arweave: %w", err)
		}
		return uri, nil
	}

	if r.publicBaseURL != "" {
		return r.publicBaseURL + MetadataPath(pick.Collectible.Name, pick.Variant), nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoMetadataURI, pick.Entry.Name)
}
