// cmd/metadata-upload/main.go
//
// Uploads generated token metadata for catalog entries to Arweave and prints
// the resulting URIs, ready to paste into mappings.json.
//
//	metadata-upload                  every mapping without a link
//	metadata-upload -name Pikachu    one entry (regular and shining)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	gcsout "pokemint/internal/adapters/out/gcs"
	usecase "pokemint/internal/application/usecase"
	catalogdom "pokemint/internal/domain/catalog"
	"pokemint/internal/infra/arweave"
	"pokemint/internal/infra/config"
	"pokemint/internal/infra/logger"
)

type uploaded struct {
	Name                string `json:"name"`
	MetadataLink        string `json:"metadata_link,omitempty"`
	ShiningMetadataLink string `json:"shining_metadata_link,omitempty"`
}

func main() {
	name := flag.String("name", "", "upload only this collectible")
	creator := flag.String("creator", "", "creator address recorded in the metadata")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	uploader := arweave.NewHTTPUploader(cfg.ArweaveBaseURL, cfg.ArweaveAPIKey, log)
	if !uploader.Configured() {
		log.Fatal("ARWEAVE_BASE_URL is empty")
	}

	cat, err := catalogdom.LoadDir(cfg.CatalogDir)
	if err != nil {
		log.Fatal("load catalog", zap.Error(err))
	}
	artwork := gcsout.NewArtworkRepositoryGCS(nil, cfg.ArtworkBucket, cfg.ArtworkBaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	upload := func(c catalogdom.Collectible, v catalogdom.Variant) string {
		md := usecase.BuildTokenMetadata(c, v, artwork.PublicURL(catalogdom.ImagePath(c.Name, v)), *creator)
		body, err := json.Marshal(md)
		if err != nil {
			log.Fatal("marshal metadata", zap.String("name", c.Name), zap.Error(err))
		}
		uri, err := uploader.UploadJSON(ctx, body)
		if err != nil {
			log.Fatal("upload", zap.String("name", c.Name), zap.String("variant", string(v)), zap.Error(err))
		}
		log.Info("uploaded", zap.String("name", c.Name), zap.String("variant", string(v)), zap.String("uri", uri))
		return uri
	}

	var out []uploaded
	for _, m := range cat.Mappings {
		if *name != "" && m.Name != *name {
			continue
		}
		if *name == "" && m.MetadataLink != "" {
			continue
		}
		row := uploaded{Name: m.Name}
		if c, ok := cat.Find(m.Name, catalogdom.VariantRegular); ok {
			row.MetadataLink = upload(c, catalogdom.VariantRegular)
		}
		if c, ok := cat.Find(m.Name, catalogdom.VariantShining); ok {
			row.ShiningMetadataLink = upload(c, catalogdom.VariantShining)
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to upload")
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
