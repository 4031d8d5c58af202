package main

import (
	"os"

	_ "github.com/lmxdawn/chainconsole/docs"
	"github.com/lmxdawn/chainconsole/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"
)

// @title Chain Console API
// @version 1.0
// @description 自然语言驱动的链上操作控制台
// @BasePath /
func main() {
	app := cli.NewApp()
	app.Name = "chain-console"
	app.Usage = "LLM driven blockchain action console"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "conf, c",
			Value: "config/config-example.yml",
			Usage: "配置文件路径",
		},
		cli.BoolFlag{
			Name:  "swag",
			Usage: "开启 swagger 文档 /swagger/doc.json",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Msgf("app run err is %s ", err.Error())
	}
}

func run(ctx *cli.Context) error {
	return server.Start(ctx.Bool("swag"), ctx.String("conf"))
}
