package subsystems

// ControllerGroup 把一个 cgroup 的所有 Setting 按 controller 分组
// controller 和 parameter 都保持在配置中第一次出现的顺序
type ControllerGroup struct {
	names  []string
	params map[string][]Setting
}

func Group(settings []Setting) *ControllerGroup {
	g := &ControllerGroup{
		params: make(map[string][]Setting),
	}
	for _, s := range settings {
		g.add(s)
	}
	return g
}

func (g *ControllerGroup) add(s Setting) {
	list, ok := g.params[s.Controller]
	if !ok {
		g.names = append(g.names, s.Controller)
	}
	g.params[s.Controller] = append(list, s)
}

// Names 返回需要的 controller 列表, cgcreate -g 用逗号连接
func (g *ControllerGroup) Names() []string {
	names := make([]string, len(g.names))
	copy(names, g.names)
	return names
}

// Params 返回某个 controller 下的所有参数
func (g *ControllerGroup) Params(controller string) map[string]string {
	list := g.params[controller]
	if list == nil {
		return nil
	}
	params := make(map[string]string, len(list))
	for _, s := range list {
		params[s.Parameter] = s.Value
	}
	return params
}

// Settings 按 controller 分组后的顺序展开, 也就是 cgset 的调用顺序
func (g *ControllerGroup) Settings() []Setting {
	var settings []Setting
	for _, name := range g.names {
		settings = append(settings, g.params[name]...)
	}
	return settings
}

func (g *ControllerGroup) Len() int {
	n := 0
	for _, list := range g.params {
		n += len(list)
	}
	return n
}
