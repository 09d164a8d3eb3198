// cmd/text2nft/commands.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	usecase "text2nft/internal/application/usecase"
	"text2nft/internal/domain/nft"
	"text2nft/internal/infra/solana/metaplex"
	"text2nft/internal/platform/di"
)

// flags
var (
	endpointFlag = &cli.StringFlag{
		Name:    "api-endpoint",
		Usage:   "cluster RPC endpoint (defaults to SOLANA_RPC_URL)",
		EnvVars: []string{"TEXT2NFT_API_ENDPOINT"},
	}
	textFlag = &cli.StringFlag{
		Name:     "text",
		Usage:    "prompt for the image",
		Required: true,
	}
	nameFlag = &cli.StringFlag{
		Name:     "name",
		Usage:    "token name",
		Required: true,
	}
	symbolFlag = &cli.StringFlag{
		Name:     "symbol",
		Usage:    "token symbol",
		Required: true,
	}
	receiverFlag = &cli.StringFlag{
		Name:     "receiver",
		Usage:    "address that receives the token",
		Required: true,
	}
	contractFlag = &cli.StringFlag{
		Name:     "contract",
		Usage:    "mint address",
		Required: true,
	}
	destFlag = &cli.StringFlag{
		Name:     "dest",
		Usage:    "destination address",
		Required: true,
	}
	linkFlag = &cli.StringFlag{
		Name:  "link",
		Usage: "metadata URI",
	}
	feeFlag = &cli.IntFlag{
		Name:  "fee",
		Usage: "seller fee in basis points",
	}
	retriesFlag = &cli.IntFlag{
		Name:  "max-retries",
		Usage: "submission attempts (0 uses the configured default)",
	}
	skipConfirmFlag = &cli.BoolFlag{
		Name:  "skip-confirmation",
		Usage: "return as soon as the transaction is accepted",
	}
	keyFlag = &cli.StringFlag{
		Name:     "encrypted-key",
		Usage:    "owner private key encrypted with the encrypt command",
		Required: true,
	}
	ownerFlag = &cli.StringFlag{
		Name:     "owner",
		Usage:    "owner address",
		Required: true,
	}
)

var execFlags = []cli.Flag{retriesFlag, skipConfirmFlag}

// commands
var (
	runCmd = &cli.Command{
		Name:   "run",
		Usage:  "Generate, pin, deploy and mint in one go",
		Flags:  []cli.Flag{textFlag, nameFlag, symbolFlag, receiverFlag},
		Action: runAction,
	}
	resumeCmd = &cli.Command{
		Name:      "resume",
		Usage:     "Continue a failed run from its last completed stage",
		ArgsUsage: "<run-id>",
		Action:    resumeAction,
	}
	runsCmd = &cli.Command{
		Name:   "runs",
		Usage:  "List stored runs, newest first",
		Action: runsAction,
	}
	deployCmd = &cli.Command{
		Name:   "deploy",
		Usage:  "Create a mint with metadata",
		Flags:  append([]cli.Flag{nameFlag, symbolFlag, feeFlag}, execFlags...),
		Action: deployAction,
	}
	mintCmd = &cli.Command{
		Name:   "mint",
		Usage:  "Mint the token to an address",
		Flags:  append([]cli.Flag{contractFlag, destFlag, linkFlag}, execFlags...),
		Action: mintAction,
	}
	topupCmd = &cli.Command{
		Name:  "topup",
		Usage: "Send lamports for fees",
		Flags: append([]cli.Flag{
			destFlag,
			&cli.Uint64Flag{Name: "amount", Usage: "lamports (default: token account rent)"},
		}, execFlags...),
		Action: topupAction,
	}
	updateCmd = &cli.Command{
		Name:  "update",
		Usage: "Overwrite token metadata",
		Flags: append([]cli.Flag{
			contractFlag, linkFlag, feeFlag,
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "symbol", Required: true},
			&cli.StringSliceFlag{Name: "creator", Usage: "creator address (repeatable)"},
			&cli.IntSliceFlag{Name: "verified", Usage: "creator verified flag (repeatable)"},
			&cli.IntSliceFlag{Name: "share", Usage: "creator share (repeatable)"},
		}, execFlags...),
		Action: updateAction,
	}
	sendCmd = &cli.Command{
		Name:  "send",
		Usage: "Transfer the token",
		Flags: append([]cli.Flag{
			contractFlag, destFlag, keyFlag,
			&cli.StringFlag{Name: "sender", Required: true},
		}, execFlags...),
		Action: sendAction,
	}
	burnCmd = &cli.Command{
		Name:   "burn",
		Usage:  "Burn the owner's token",
		Flags:  append([]cli.Flag{contractFlag, ownerFlag, keyFlag}, execFlags...),
		Action: burnAction,
	}
	walletCmd = &cli.Command{
		Name:   "wallet",
		Usage:  "Generate a keypair",
		Action: walletAction,
	}
	airdropCmd = &cli.Command{
		Name:  "airdrop",
		Usage: "Request test-cluster funds",
		Flags: []cli.Flag{
			destFlag,
			&cli.Uint64Flag{Name: "lamports", Value: 1_000_000_000},
		},
		Action: airdropAction,
	}
	encryptCmd = &cli.Command{
		Name:  "encrypt",
		Usage: "Encrypt a private key for send and burn",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "keypair-file", Usage: "JSON array keypair file"},
			&cli.StringFlag{Name: "keypair", Usage: "JSON array or base58 secret key"},
		},
		Action: encryptAction,
	}
)

func container(ctx *cli.Context) (*di.Container, error) {
	return di.NewContainer(ctx.Context)
}

func callOptions(ctx *cli.Context) usecase.CallOptions {
	opts := usecase.CallOptions{Endpoint: ctx.String(endpointFlag.Name)}
	var o usecase.ExecOverrides
	set := false
	if ctx.IsSet(retriesFlag.Name) {
		n := ctx.Int(retriesFlag.Name)
		o.MaxRetries = &n
		set = true
	}
	if ctx.IsSet(skipConfirmFlag.Name) {
		b := ctx.Bool(skipConfirmFlag.Name)
		o.SkipConfirmation = &b
		set = true
	}
	if set {
		opts.Exec = &o
	}
	return opts
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints the envelope and turns a failed status into an exit error.
func printResult(v any, err error) error {
	if perr := printJSON(v); perr != nil {
		return perr
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// sellerFee range-checks --fee before narrowing it to the on-chain width.
func sellerFee(v int) (int16, error) {
	if v < 0 || v > metaplex.MaxSellerFeeBasisPoints {
		return 0, cli.Exit(fmt.Sprintf("--fee %d: %v", v, metaplex.ErrInvalidSellerFee), 1)
	}
	return int16(v), nil
}

func runAction(ctx *cli.Context) error {
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	run, err := c.Text2NFT.Run(ctx.Context, nft.Request{
		Text:              ctx.String(textFlag.Name),
		Name:              ctx.String(nameFlag.Name),
		Symbol:            ctx.String(symbolFlag.Name),
		ReceiverPublicKey: ctx.String(receiverFlag.Name),
	})
	return printResult(run, err)
}

func resumeAction(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return fmt.Errorf("missing run id")
	}
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	run, err := c.Text2NFT.Resume(ctx.Context, id)
	return printResult(run, err)
}

func runsAction(ctx *cli.Context) error {
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	runs, err := c.Text2NFT.ListRuns(ctx.Context)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s\t%s\t%s\t%s\n", r.ID, r.Stage, r.UpdatedAt.Format("2006-01-02 15:04:05"), r.Request.Name)
	}
	return nil
}

func deployAction(ctx *cli.Context) error {
	fee, err := sellerFee(ctx.Int(feeFlag.Name))
	if err != nil {
		return err
	}
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	return printResult(c.NFT.Deploy(ctx.Context, usecase.DeployInput{
		CallOptions: callOptions(ctx),
		Name:        ctx.String(nameFlag.Name),
		Symbol:      ctx.String(symbolFlag.Name),
		Fee:         fee,
	}))
}

func mintAction(ctx *cli.Context) error {
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	return printResult(c.NFT.Mint(ctx.Context, usecase.MintInput{
		CallOptions: callOptions(ctx),
		Contract:    ctx.String(contractFlag.Name),
		Destination: ctx.String(destFlag.Name),
		Link:        ctx.String(linkFlag.Name),
	}))
}

func topupAction(ctx *cli.Context) error {
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	in := usecase.TopupInput{CallOptions: callOptions(ctx), To: ctx.String(destFlag.Name)}
	if ctx.IsSet("amount") {
		amount := ctx.Uint64("amount")
		in.Amount = &amount
	}
	return printResult(c.NFT.Topup(ctx.Context, in))
}

func updateAction(ctx *cli.Context) error {
	fee, err := sellerFee(ctx.Int(feeFlag.Name))
	if err != nil {
		return err
	}
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	return printResult(c.NFT.UpdateTokenMetadata(ctx.Context, usecase.UpdateInput{
		CallOptions: callOptions(ctx),
		Contract:    ctx.String(contractFlag.Name),
		Link:        ctx.String(linkFlag.Name),
		Name:        ctx.String("name"),
		Symbol:      ctx.String("symbol"),
		Creators:    ctx.StringSlice("creator"),
		Verified:    ctx.IntSlice("verified"),
		Shares:      ctx.IntSlice("share"),
		Fee:         fee,
	}))
}

func sendAction(ctx *cli.Context) error {
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	return printResult(c.NFT.Send(ctx.Context, usecase.SendInput{
		CallOptions:         callOptions(ctx),
		Contract:            ctx.String(contractFlag.Name),
		Sender:              ctx.String("sender"),
		Destination:         ctx.String(destFlag.Name),
		EncryptedPrivateKey: ctx.String(keyFlag.Name),
	}))
}

func burnAction(ctx *cli.Context) error {
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	return printResult(c.NFT.Burn(ctx.Context, usecase.BurnInput{
		CallOptions:         callOptions(ctx),
		Contract:            ctx.String(contractFlag.Name),
		Owner:               ctx.String(ownerFlag.Name),
		EncryptedPrivateKey: ctx.String(keyFlag.Name),
	}))
}

// walletAction needs no credentials.
func walletAction(*cli.Context) error {
	return printJSON(new(usecase.NFTUsecase).Wallet())
}

func airdropAction(ctx *cli.Context) error {
	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	return printResult(c.NFT.Airdrop(ctx.Context, usecase.AirdropInput{
		CallOptions: callOptions(ctx),
		Address:     ctx.String(destFlag.Name),
		Lamports:    ctx.Uint64("lamports"),
	}))
}

func encryptAction(ctx *cli.Context) error {
	keypair := ctx.String("keypair")
	if path := ctx.String("keypair-file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		keypair = string(b)
	}
	if keypair == "" {
		return fmt.Errorf("one of --keypair or --keypair-file is required")
	}

	c, err := container(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	tok, err := c.NFT.EncryptKey(keypair)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
