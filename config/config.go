package config

import (
	"os"
	"strconv"
	"strings"

	"cgapply/cgroups/subsystems"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// DefaultPath 是未指定 --config 时读取的配置文件
const DefaultPath = "/etc/cgapply.toml"

var (
	ErrNotFound = errors.New("configuration file not found")
	ErrInvalid  = errors.New("invalid configuration")
)

// Cgroup 对应配置文件中的一个 section
// Name 是 section 名, 可能以 / 开头, 也可能包含 / 表示嵌套的 cgroup
type Cgroup struct {
	Name     string
	Settings []subsystems.Setting
}

// Config 保留 cgroup 在文件中出现的顺序
type Config struct {
	Cgroups []Cgroup
}

// Len 返回所有 cgroup 的 setting 总数
func (c *Config) Len() int {
	n := 0
	for _, cg := range c.Cgroups {
		n += len(cg.Settings)
	}
	return n
}

// Load 读取并解析 path 指向的 TOML 文件
func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "error reading configuration file %s", path)
	}
	c, err := Parse(string(contents))
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding configuration file %s", path)
	}
	return c, nil
}

// Parse 解析配置内容, 所有 key 在这里一次性拆分成 controller 和 parameter
// 任何一个 key 不合法都会让整个配置失效
func Parse(data string) (*Config, error) {
	raw := make(map[string]interface{})
	md, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, err
	}

	c := &Config{}
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)
	// map 没有顺序, 用 MetaData.Keys() 还原文件中的顺序
	for _, key := range md.Keys() {
		name := key[0]
		section, ok := raw[name].(map[string]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrInvalid, "top-level key %q is not a table", name)
		}
		i, ok := index[name]
		if !ok {
			i = len(c.Cgroups)
			index[name] = i
			seen[name] = make(map[string]bool)
			c.Cgroups = append(c.Cgroups, Cgroup{Name: name})
		}
		if len(key) == 1 {
			continue
		}

		value := lookup(section, key[1:])
		// 点分的 key (memory.limit = 1) 在 TOML 里是嵌套表, 只处理叶子
		if _, isTable := value.(map[string]interface{}); isTable {
			continue
		}
		settingKey := strings.Join(key[1:], ".")
		if seen[name][settingKey] {
			return nil, errors.Wrapf(ErrInvalid, "cgroup %q: duplicate key %q", name, settingKey)
		}
		seen[name][settingKey] = true

		text, err := formatValue(value)
		if err != nil {
			return nil, errors.Wrapf(err, "cgroup %q: key %q", name, settingKey)
		}
		setting, err := subsystems.NewSetting(settingKey, text)
		if err != nil {
			return nil, errors.Wrapf(err, "cgroup %q", name)
		}
		c.Cgroups[i].Settings = append(c.Cgroups[i].Settings, setting)
	}
	return c, nil
}

func lookup(section map[string]interface{}, path []string) interface{} {
	var cur interface{} = section
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[p]
	}
	return cur
}

func formatValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", errors.Wrapf(ErrInvalid, "unsupported value type %T", v)
	}
}
