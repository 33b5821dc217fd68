package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/shopauth/internal/buildinfo"
	"github.com/dmitrijs2005/shopauth/internal/client/cli"
	"github.com/dmitrijs2005/shopauth/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())

}
