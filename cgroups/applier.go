package cgroups

import (
	"strings"

	"cgapply/cgroups/subsystems"
	"cgapply/config"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Applier 依次处理配置中的每个 cgroup
type Applier struct {
	Runner     CommandRunner
	CreateTool []string
	SetTool    []string
}

func NewApplier(runner CommandRunner) *Applier {
	return &Applier{Runner: runner}
}

// CgroupPath 去掉 cgroup 名开头的一个 /
// //cron 只去掉一个, 剩下 /cron
func CgroupPath(name string) string {
	return strings.TrimPrefix(name, "/")
}

// Apply 按配置文件中的顺序处理所有 cgroup
// 一个 cgroup 失败只记录日志, 不影响后面的 cgroup, 所有失败汇总后返回
func (a *Applier) Apply(cfg *config.Config) error {
	var result *multierror.Error
	for _, cg := range cfg.Cgroups {
		path := CgroupPath(cg.Name)
		manager := NewCgroupManager(path, subsystems.Group(cg.Settings), a.Runner).
			WithTools(a.CreateTool, a.SetTool)
		if err := manager.Apply(); err != nil {
			logrus.Errorf("Failed to apply cgroup %s: %v", cg.Name, err)
			result = multierror.Append(result, errors.Wrapf(err, "cgroup %s", cg.Name))
			continue
		}
		logrus.Infof("Applied cgroup %s", path)
	}
	return result.ErrorOrNil()
}
