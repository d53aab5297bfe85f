// internal/infra/solana/pda.go
package solana

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
)

// MetadataPDAs are the two Metaplex accounts the program creates for a mint.
type MetadataPDAs struct {
	Metadata      common.PublicKey
	MasterEdition common.PublicKey
}

// DeriveMetadataPDAs derives
//
//	metadata:       ["metadata", program, mint]
//	master edition: ["metadata", program, mint, "edition"]
//
// both under metadataProgram. The result depends only on the two inputs.
func DeriveMetadataPDAs(mint, metadataProgram common.PublicKey) (MetadataPDAs, error) {
	metadata, _, err := common.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			metadataProgram.Bytes(),
			mint.Bytes(),
		},
		metadataProgram,
	)
	if err != nil {
		return MetadataPDAs{}, fmt.Errorf("solana: derive metadata pda: %w", err)
	}

	edition, _, err := common.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			metadataProgram.Bytes(),
			mint.Bytes(),
			[]byte("edition"),
		},
		metadataProgram,
	)
	if err != nil {
		return MetadataPDAs{}, fmt.Errorf("solana: derive master edition pda: %w", err)
	}

	return MetadataPDAs{Metadata: metadata, MasterEdition: edition}, nil
}
