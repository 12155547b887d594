package router

import (
	"sort"

	"places-api/internal/transport/http/ez"
)

// APIModule 在 /api 分组上挂载自己的路由
type APIModule interface{ MountAPI(api ez.EZ) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 收集模块，由 NewAPIEngine 统一挂载
type Registry struct {
	mods []APIModule
}

func (r *Registry) Register(mods ...APIModule) {
	for _, m := range mods {
		if m != nil {
			r.mods = append(r.mods, m)
		}
	}
}

// MountAll 按优先级挂载所有已注册模块
func (r *Registry) MountAll(api ez.EZ) {
	mods := append([]APIModule(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(api)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
