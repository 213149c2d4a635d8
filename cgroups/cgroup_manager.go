package cgroups

import (
	"strings"

	"cgapply/cgroups/subsystems"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	DefaultCreateTool = []string{"cgcreate"}
	DefaultSetTool    = []string{"cgset"}
)

// CgroupManager 负责一个 cgroup 的创建和参数设置
type CgroupManager struct {
	// cgroup 在 hierarchy 中的路径, 不带开头的 /
	Path     string
	Resource *subsystems.ControllerGroup

	runner     CommandRunner
	createTool []string
	setTool    []string
}

func NewCgroupManager(path string, res *subsystems.ControllerGroup, runner CommandRunner) *CgroupManager {
	return &CgroupManager{
		Path:       path,
		Resource:   res,
		runner:     runner,
		createTool: DefaultCreateTool,
		setTool:    DefaultSetTool,
	}
}

// WithTools 替换 cgcreate / cgset 的命令前缀, 例如 sudo cgcreate
func (c *CgroupManager) WithTools(createTool, setTool []string) *CgroupManager {
	if len(createTool) > 0 {
		c.createTool = createTool
	}
	if len(setTool) > 0 {
		c.setTool = setTool
	}
	return c
}

// CreateArgs 返回 cgcreate -g <controllers>:/<path>
func (c *CgroupManager) CreateArgs() []string {
	controllers := strings.Join(c.Resource.Names(), ",")
	return append(clone(c.createTool), "-g", controllers+":/"+c.Path)
}

// SetArgs 返回 cgset -r <controller>.<parameter>=<value> /<path>
func (c *CgroupManager) SetArgs(s subsystems.Setting) []string {
	return append(clone(c.setTool), "-r", s.String(), "/"+c.Path)
}

// 创建 cgroup, 一次申请所有需要的 controller
func (c *CgroupManager) Create() error {
	if err := c.runner.Run(c.CreateArgs()); err != nil {
		return errors.Wrap(err, "create")
	}
	return nil
}

// 设置 cgroup 资源限制, 每个参数调用一次 cgset
func (c *CgroupManager) Set() error {
	for _, s := range c.Resource.Settings() {
		if err := c.runner.Run(c.SetArgs(s)); err != nil {
			return errors.Wrapf(err, "set %s.%s", s.Controller, s.Parameter)
		}
		logrus.Debugf("set cgroup %s %s", c.Path, s)
	}
	return nil
}

// Apply 先创建再设置, 任何一步失败都直接返回
func (c *CgroupManager) Apply() error {
	if len(c.Resource.Names()) == 0 {
		logrus.Warnf("cgroup %s has no settings", c.Path)
	}
	if err := c.Create(); err != nil {
		return err
	}
	return c.Set()
}

func clone(argv []string) []string {
	out := make([]string, len(argv), len(argv)+3)
	copy(out, argv)
	return out
}
