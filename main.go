package main

import (
	"os"

	"cgapply/cgroups"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const usage = `create cgroups and set their limits from a TOML configuration
			cgapply [--config /etc/cgapply.toml]`

func main() {
	app := newApp(nil)
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// runner 为 nil 时真正执行命令, --dry-run 时总是只打印
func newApp(runner cgroups.CommandRunner) *cli.App {
	app := cli.NewApp()
	app.Name = "cgapply"
	app.Usage = usage
	app.Version = "1.0.0"
	app.Flags = applyFlags()

	app.Before = func(ctx *cli.Context) error {
		logrus.SetOutput(os.Stderr)
		switch ctx.String("log-format") {
		case "json":
			logrus.SetFormatter(&logrus.JSONFormatter{})
		case "text":
			logrus.SetFormatter(&logrus.TextFormatter{})
		default:
			return errors.Errorf("unknown log format %q", ctx.String("log-format"))
		}
		level, err := logrus.ParseLevel(ctx.String("log-level"))
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	}
	app.Action = func(ctx *cli.Context) error {
		return applyConfig(ctx, runner)
	}
	return app
}
