package cgroups

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CommandRunner 执行一条外部命令, 退出码非 0 时返回 error
type CommandRunner interface {
	Run(argv []string) error
}

// CommandError 记录失败的命令和它的输出
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner 真正 fork 出 cgcreate / cgset
type ExecRunner struct{}

func (ExecRunner) Run(argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	logrus.Debugf("exec %s", strings.Join(argv, " "))
	out, err := exec.Command(argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		cmdErr := &CommandError{
			Args:     argv,
			ExitCode: -1,
			Output:   string(out),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return cmdErr
	}
	return nil
}

// DryRunner 只打印命令, 不执行
type DryRunner struct {
	Logger logrus.FieldLogger
}

func (r DryRunner) Run(argv []string) error {
	logger := r.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithField("dry-run", true).Info(strings.Join(argv, " "))
	return nil
}
