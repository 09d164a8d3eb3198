// cmd/keygen/main.go
//
// keygen creates the payer wallet and the decryption key the service loads
// from its secret backend.
//   - writes the payer secret key as a solana-keygen compatible JSON array
//   - prints the payer address and the base58 form of the secret key
//   - prints a fresh cipher key for DECRYPTION_KEY_SECRET
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"text2nft/internal/infra/cipher"
	"text2nft/internal/infra/solana"
)

func main() {
	app := &cli.App{
		Name:  "keygen",
		Usage: "create the payer wallet and decryption key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "text2nft-payer.json", Usage: "keypair file to write"},
			&cli.BoolFlag{Name: "force", Usage: "overwrite an existing keypair file"},
		},
		Action: generate,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx *cli.Context) error {
	out := ctx.String("out")

	// 1. payer keypair
	acc := types.NewAccount()
	data, err := json.Marshal(solana.KeypairInts(acc))
	if err != nil {
		return fmt.Errorf("marshal secret key json: %w", err)
	}

	if _, err := os.Stat(out); err == nil && !ctx.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	// 2. decryption key
	key, err := cipher.GenerateKey()
	if err != nil {
		return fmt.Errorf("generate decryption key: %w", err)
	}

	fmt.Println("============================================")
	fmt.Println("text2nft payer wallet generated")
	fmt.Println("============================================")
	fmt.Printf("Payer address:\n  %s\n\n", acc.PublicKey.ToBase58())
	fmt.Printf("Secret key file (JSON array):\n  %s\n\n", out)
	fmt.Printf("Secret key (base58):\n  %s\n\n", base58.Encode(acc.PrivateKey))
	fmt.Printf("Decryption key:\n  %s\n\n", key)
	fmt.Println("Store both secrets in the configured secret backend and keep the")
	fmt.Println("keypair file out of version control.")
	return nil
}
