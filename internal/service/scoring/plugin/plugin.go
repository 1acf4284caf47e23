package plugin

import (
	"context"
	"encoding/json"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"skypark/internal/service/scoring/domain"
)

// Plugin 是一个已加载的扩展模块：描述信息加上编译好的 CEL 程序。
// 每次加载都在全新的 cel.Env 中编译，程序沙箱内执行、不触达宿主状态；
// 卸载即丢弃程序引用，由 GC 回收整个求值上下文。
type Plugin struct {
	desc         *Descriptor
	validateProg cel.Program // 可能为 nil（描述文件未提供 validate）
	scoreProg    cel.Program
}

// Compile 在一个隔离的求值环境中编译描述文件，产出可注册的扩展实例。
func Compile(desc *Descriptor) (*Plugin, error) {
	env, err := cel.NewEnv(
		cel.Variable("visit", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("config", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("history", cel.ListType(cel.MapType(cel.StringType, cel.DynType))),
		cel.Variable("now", cel.TimestampType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cel environment")
	}

	p := &Plugin{desc: desc}

	if desc.Validate != "" {
		ast, iss := env.Compile(desc.Validate)
		if iss != nil && iss.Err() != nil {
			return nil, errors.Wrapf(iss.Err(), "extension %s: invalid validate expression", desc.ID)
		}
		prog, err := env.Program(ast)
		if err != nil {
			return nil, errors.Wrapf(err, "extension %s: failed to build validate program", desc.ID)
		}
		p.validateProg = prog
	}

	ast, iss := env.Compile(desc.Expression)
	if iss != nil && iss.Err() != nil {
		return nil, errors.Wrapf(iss.Err(), "extension %s: invalid scoring expression", desc.ID)
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "extension %s: failed to build scoring program", desc.ID)
	}
	p.scoreProg = prog

	return p, nil
}

func (p *Plugin) ID() string                { return p.desc.ID }
func (p *Plugin) Name() string              { return p.desc.Name }
func (p *Plugin) Description() string       { return p.desc.Description }
func (p *Plugin) Schema() map[string]string { return p.desc.ConfigSchema }

func (p *Plugin) DefaultConfig() map[string]interface{} {
	cfg := make(map[string]interface{}, len(p.desc.DefaultConfig))
	for k, v := range p.desc.DefaultConfig {
		cfg[k] = v
	}
	return cfg
}

// ParseConfig 反序列化配置 JSON；raw 为空时退回缺省配置。
func (p *Plugin) ParseConfig(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return p.DefaultConfig(), nil
	}
	var cfg map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, errors.Wrap(domain.ErrExtensionConfigInvalid, err.Error())
	}
	return cfg, nil
}

// ValidateConfig 用扩展自带的校验表达式检查配置。
func (p *Plugin) ValidateConfig(cfg map[string]interface{}) error {
	if p.validateProg == nil {
		return nil
	}
	out, _, err := p.validateProg.Eval(map[string]interface{}{
		"config":  cfg,
		"visit":   map[string]interface{}{},
		"history": []map[string]interface{}{},
	})
	if err != nil {
		return errors.Wrap(domain.ErrExtensionConfigInvalid, err.Error())
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return errors.Wrapf(domain.ErrExtensionConfigInvalid,
			"extension %s: validate expression returned %T, want bool", p.desc.ID, out.Value())
	}
	if !ok {
		return domain.ErrExtensionConfigInvalid
	}
	return nil
}

// Algorithm 用给定配置实例化一个扩展算法。
func (p *Plugin) Algorithm(cfg map[string]interface{}) domain.Algorithm {
	return &celAlgorithm{pluginID: p.desc.ID, prog: p.scoreProg, cfg: cfg}
}

// celAlgorithm 是扩展算法的执行端：配置绑定 + CEL 程序求值。
type celAlgorithm struct {
	pluginID string
	prog     cel.Program
	cfg      map[string]interface{}
}

func (a *celAlgorithm) Compute(_ context.Context, in domain.Input) (int, error) {
	visit := map[string]interface{}{
		"id":              in.Visit.ID,
		"visitor_id":      in.Visit.VisitorID,
		"attraction":      in.Visit.AttractionName,
		"attraction_type": in.Attraction.Type,
		"base_points":     in.Attraction.BasePoints,
		"entry_at":        in.Visit.EntryAt,
	}
	history := make([]map[string]interface{}, 0, len(in.History))
	for _, v := range in.History {
		history = append(history, map[string]interface{}{
			"attraction": v.AttractionName,
			"entry_at":   v.EntryAt,
			"points":     v.Points,
			"active":     v.Active,
		})
	}

	out, _, err := a.prog.Eval(map[string]interface{}{
		"visit":   visit,
		"config":  a.cfg,
		"history": history,
		"now":     in.Now,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "extension %s: scoring expression failed", a.pluginID)
	}

	switch v := out.Value().(type) {
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.Errorf("extension %s: scoring expression returned %T, want a number", a.pluginID, out.Value())
	}
}
