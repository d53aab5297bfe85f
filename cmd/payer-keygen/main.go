// cmd/payer-keygen/main.go
//
// Generates the payer keypair the server signs packs with and writes it in
// the solana-keygen JSON format (PAYER_KEYPAIR_FILE or a Secret Manager
// payload).
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/blocto/solana-go-sdk/types"

	solanainfra "pokemint/internal/infra/solana"
)

func main() {
	out := flag.String("out", "pokemint-payer.json", "keypair file to create")
	flag.Parse()

	acc := types.NewAccount()
	if err := solanainfra.WriteKeypairFile(*out, acc); err != nil {
		log.Fatalf("keygen: %v", err)
	}

	fmt.Printf("Public key (fund this on devnet):\n  %s\n\n", acc.PublicKey.ToBase58())
	fmt.Printf("Keypair file:\n  %s\n\n", *out)
	fmt.Println("Do not commit the keypair file. Store it in Secret Manager and point PAYER_KEY_SECRET at the version.")
}
