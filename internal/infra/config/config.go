// internal/infra/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultRPCEndpoint            = "https://api.devnet.solana.com"
	DefaultPokemonProgramID       = "6X7Dmx74WDrQtTRqaGZykdRvLh9LTCwR9WPQKtoJpNSE"
	DefaultTokenMetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	DefaultTreasury               = "8rrF7VycfSHR48iQ7HXTRwHaNJNf2p2MkA5fHf5KDSJ"

	// 0.05 SOL
	DefaultPackFeeLamports uint64 = 50_000_000
)

// Receipt store backends.
const (
	ReceiptStoreFirestore = "firestore"
	ReceiptStorePostgres  = "postgres"
	ReceiptStoreNone      = "none"
)

// Config holds every environment setting the service reads.
type Config struct {
	Port   string
	AppEnv string

	// Solana
	RPCEndpoint            string
	Commitment             string
	PokemonProgramID       string
	TokenMetadataProgramID string
	TreasuryAddress        string
	PackFeeLamports        uint64
	ShiningChance          float64
	PrepareMint            bool
	ConfirmPollInterval    time.Duration

	// Payer signer: local keypair file first, then Secret Manager.
	PayerKeypairFile string
	PayerKeySecret   string

	// GCP
	GCPProjectID string
	GCPCreds     string

	// Receipts
	ReceiptStore string
	DatabaseURL  string

	// Artwork / metadata hosting
	ArtworkBucket  string
	ArtworkBaseURL string
	PublicBaseURL  string
	CatalogDir     string

	// Arweave / Irys uploader (empty = disabled)
	ArweaveBaseURL string
	ArweaveAPIKey  string

	// Operator mail
	SendGridAPIKey string
	MailFrom       string
	OperatorEmail  string

	// HTTP
	FirebaseAuthEnabled bool
	SessionSecret       string
	CORSAllowedOrigins  []string
}

// Load reads the environment and returns Config.
func Load() *Config {
	return &Config{
		Port:   getenvDefault("PORT", "8080"),
		AppEnv: getenvDefault("APP_ENV", "production"),

		RPCEndpoint:            getenvDefault("SOLANA_RPC_ENDPOINT", DefaultRPCEndpoint),
		Commitment:             getenvDefault("SOLANA_COMMITMENT", "confirmed"),
		PokemonProgramID:       getenvDefault("POKEMON_PROGRAM_ID", DefaultPokemonProgramID),
		TokenMetadataProgramID: getenvDefault("TOKEN_METADATA_PROGRAM_ID", DefaultTokenMetadataProgramID),
		TreasuryAddress:        getenvDefault("TREASURY_ADDRESS", DefaultTreasury),
		PackFeeLamports:        getenvUint64("PACK_FEE_LAMPORTS", DefaultPackFeeLamports),
		ShiningChance:          getenvFloat("SHINING_CHANCE", 0.10),
		PrepareMint:            getenvBool("PREPARE_MINT", true),
		ConfirmPollInterval:    getenvDuration("CONFIRM_POLL_INTERVAL", 500*time.Millisecond),

		PayerKeypairFile: os.Getenv("PAYER_KEYPAIR_FILE"),
		PayerKeySecret:   os.Getenv("PAYER_KEY_SECRET"),

		GCPProjectID: os.Getenv("GCP_PROJECT_ID"),
		GCPCreds:     os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		ReceiptStore: strings.ToLower(getenvDefault("RECEIPT_STORE", ReceiptStoreNone)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		ArtworkBucket:  os.Getenv("ARTWORK_BUCKET"),
		ArtworkBaseURL: os.Getenv("ARTWORK_BASE_URL"),
		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		CatalogDir:     os.Getenv("CATALOG_DIR"),

		ArweaveBaseURL: os.Getenv("ARWEAVE_BASE_URL"),
		ArweaveAPIKey:  os.Getenv("ARWEAVE_API_KEY"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenvDefault("MAIL_FROM", "no-reply@pokemint.app"),
		OperatorEmail:  os.Getenv("OPERATOR_EMAIL"),

		FirebaseAuthEnabled: getenvBool("FIREBASE_AUTH_ENABLED", false),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		CORSAllowedOrigins:  splitList(getenvDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvUint64(key string, def uint64) uint64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
