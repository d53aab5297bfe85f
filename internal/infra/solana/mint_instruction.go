// internal/infra/solana/mint_instruction.go
package solana

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

// MintInstructionArgs is the borsh layout of the program's `mint` arguments.
// Field order matters.
type MintInstructionArgs struct {
	MetadataTitle  string
	MetadataSymbol string
	MetadataURI    string
	PokemonName    string
}

// MintInstructionAccounts lists the accounts the caller must supply.
// System, rent and token program ids are filled in by BuildMintInstruction.
type MintInstructionAccounts struct {
	Payer                common.PublicKey
	Mint                 common.PublicKey
	Metadata             common.PublicKey
	MasterEdition        common.PublicKey
	TokenMetadataProgram common.PublicKey
}

func (a MintInstructionArgs) validate() error {
	if len(a.MetadataTitle) > maxNameLength {
		return fmt.Errorf("%w: title %d > %d", ErrMetadataTooLong, len(a.MetadataTitle), maxNameLength)
	}
	if len(a.MetadataSymbol) > maxSymbolLength {
		return fmt.Errorf("%w: symbol %d > %d", ErrMetadataTooLong, len(a.MetadataSymbol), maxSymbolLength)
	}
	if len(a.MetadataURI) > maxURILength {
		return fmt.Errorf("%w: uri %d > %d", ErrMetadataTooLong, len(a.MetadataURI), maxURILength)
	}
	return nil
}

// EncodeMintData returns discriminator || borsh(args).
func EncodeMintData(args MintInstructionArgs) ([]byte, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}
	body, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("solana: borsh encode mint args: %w", err)
	}
	data := make([]byte, 0, len(mintDiscriminator)+len(body))
	data = append(data, mintDiscriminator[:]...)
	data = append(data, body...)
	return data, nil
}

// BuildMintInstruction builds the program's `mint` instruction with the
// accounts in IDL order:
//
//	0 payer                  (w, s)
//	1 mint                   (w, s)
//	2 metadata               (w)
//	3 system program
//	4 rent sysvar
//	5 token metadata program
//	6 master edition         (w)
//	7 token program
func BuildMintInstruction(programID common.PublicKey, acc MintInstructionAccounts, args MintInstructionArgs) (types.Instruction, error) {
	data, err := EncodeMintData(args)
	if err != nil {
		return types.Instruction{}, err
	}

	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			{PubKey: acc.Payer, IsSigner: true, IsWritable: true},
			{PubKey: acc.Mint, IsSigner: true, IsWritable: true},
			{PubKey: acc.Metadata, IsSigner: false, IsWritable: true},
			{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
			{PubKey: common.SysVarRentPubkey, IsSigner: false, IsWritable: false},
			{PubKey: acc.TokenMetadataProgram, IsSigner: false, IsWritable: false},
			{PubKey: acc.MasterEdition, IsSigner: false, IsWritable: true},
			{PubKey: common.TokenProgramID, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}
