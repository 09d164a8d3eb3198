// cmd/text2nft/main.go
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "text2nft"
	app.Usage = "generate an image from text and mint it as an NFT"
	app.Version = version
	app.Flags = []cli.Flag{endpointFlag}
	app.Commands = append(
		cli.Commands{},
		runCmd,
		resumeCmd,
		runsCmd,
		deployCmd,
		mintCmd,
		topupCmd,
		updateCmd,
		sendCmd,
		burnCmd,
		walletCmd,
		airdropCmd,
		encryptCmd,
	)

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
