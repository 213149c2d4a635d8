package main

import (
	"strings"

	"cgapply/cgroups"
	"cgapply/config"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// 每次返回新的 flag, cli 会在 Apply 时改写 flag 的值
func applyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "cgroup configuration file",
			Value:   config.DefaultPath,
			EnvVars: []string{"CGAPPLY_CONFIG"},
		},
		// 允许 "sudo cgcreate" 这种带前缀的写法
		&cli.StringFlag{
			Name:    "cgcreate",
			Usage:   "command used to create a cgroup",
			Value:   strings.Join(cgroups.DefaultCreateTool, " "),
			EnvVars: []string{"CGAPPLY_CGCREATE"},
		},
		&cli.StringFlag{
			Name:    "cgset",
			Usage:   "command used to set a cgroup parameter",
			Value:   strings.Join(cgroups.DefaultSetTool, " "),
			EnvVars: []string{"CGAPPLY_CGSET"},
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "print the commands instead of running them",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "exit with an error if any cgroup failed",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level (debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"CGAPPLY_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format (text, json)",
			Value: "text",
		},
	}
}

func applyConfig(ctx *cli.Context, runner cgroups.CommandRunner) error {
	if ctx.NArg() > 0 {
		return errors.Errorf("unexpected arguments %v", ctx.Args().Slice())
	}
	createTool, err := parseTool(ctx.String("cgcreate"))
	if err != nil {
		return errors.Wrap(err, "--cgcreate")
	}
	setTool, err := parseTool(ctx.String("cgset"))
	if err != nil {
		return errors.Wrap(err, "--cgset")
	}

	// 配置有任何问题都在执行命令之前退出
	path := ctx.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	logrus.Debugf("Loaded %d cgroups (%d settings) from %s", len(cfg.Cgroups), cfg.Len(), path)

	if ctx.Bool("dry-run") {
		runner = cgroups.DryRunner{}
	} else if runner == nil {
		runner = cgroups.ExecRunner{}
	}
	applier := cgroups.NewApplier(runner)
	applier.CreateTool = createTool
	applier.SetTool = setTool

	if err := applier.Apply(cfg); err != nil {
		failed := 1
		if merr, ok := err.(*multierror.Error); ok {
			failed = len(merr.Errors)
		}
		logrus.Warnf("%d of %d cgroups failed", failed, len(cfg.Cgroups))
		if ctx.Bool("strict") {
			return err
		}
		return nil
	}
	logrus.Infof("Applied %d cgroups from %s", len(cfg.Cgroups), path)
	return nil
}

func parseTool(command string) ([]string, error) {
	argv, err := shellwords.Parse(command)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	return argv, nil
}
