package subsystems

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var ErrMalformedKey = errors.New("malformed setting key")

// 一条资源限制, 对应配置中的 "controller.parameter" = value
type Setting struct {
	Controller string
	Parameter  string
	Value      string
}

// cgset -r 接收的参数形式
func (s Setting) String() string {
	return fmt.Sprintf("%s.%s=%s", s.Controller, s.Parameter, s.Value)
}

// ParseKey 按第一个 . 把 key 拆成 controller 和 parameter
// memory.memsw.limit_in_bytes -> memory, memsw.limit_in_bytes
func ParseKey(key string) (controller, parameter string, err error) {
	idx := strings.Index(key, ".")
	if idx < 0 {
		return "", "", errors.Wrapf(ErrMalformedKey, "%q has no controller prefix", key)
	}
	controller, parameter = key[:idx], key[idx+1:]
	if controller == "" || parameter == "" {
		return "", "", errors.Wrapf(ErrMalformedKey, "%q", key)
	}
	return controller, parameter, nil
}

func NewSetting(key, value string) (Setting, error) {
	controller, parameter, err := ParseKey(key)
	if err != nil {
		return Setting{}, err
	}
	return Setting{
		Controller: controller,
		Parameter:  parameter,
		Value:      value,
	}, nil
}
