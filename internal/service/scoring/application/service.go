package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	park "skypark/domain"
	"skypark/internal/pkg/logger"
	"skypark/internal/service/scoring/algorithm"
	"skypark/internal/service/scoring/domain"
	"skypark/internal/service/scoring/domain/port"
)

// StrategyService 拥有积分策略目录，维护“最多一条激活策略”的不变式，
// 并负责把激活策略解析成可执行的算法。
type StrategyService struct {
	repo     domain.StrategyRepository
	registry port.ExtensionRegistry
	factory  *algorithm.Factory
	lock     port.CatalogLock // 串行化激活/停用，关闭 check-then-act 竞态
	clock    park.TimeProvider
	tracer   trace.Tracer
}

func NewStrategyService(
	repo domain.StrategyRepository,
	registry port.ExtensionRegistry,
	factory *algorithm.Factory,
	lock port.CatalogLock,
	clock park.TimeProvider,
	tracer trace.Tracer,
) *StrategyService {
	return &StrategyService{
		repo:     repo,
		registry: registry,
		factory:  factory,
		lock:     lock,
		clock:    clock,
		tracer:   tracer,
	}
}

// Create 新建一条策略。重名、定义含糊（内置与扩展混填、二者皆缺）、
// 扩展缺席或配置不被扩展接受都会被拒绝。
func (s *StrategyService) Create(ctx context.Context, req *CreateStrategyRequest) (*domain.ScoringStrategy, error) {
	ctx, span := s.tracer.Start(ctx, "strategy.Create")
	defer span.End()
	span.SetAttributes(attribute.String("strategy.name", req.Name))

	if req.Name == "" {
		return nil, errors.Wrap(domain.ErrInvalidStrategyDefinition, "name is required")
	}
	existing, err := s.repo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrStrategyNameTaken
	}

	strategy := domain.NewStrategy(req.Name, req.Description)

	if req.PluginID != "" {
		// 扩展策略：不允许同时指定内置算法
		if req.AlgorithmKind != "" || req.Config != nil {
			return nil, errors.Wrap(domain.ErrInvalidStrategyDefinition,
				"cannot specify both a built-in algorithm and an extension identifier")
		}
		ext, ok := s.registry.Get(req.PluginID)
		if !ok {
			return nil, domain.ErrExtensionNotFound
		}
		cfg, err := ext.ParseConfig(req.RawConfig)
		if err != nil {
			return nil, err
		}
		if err := ext.ValidateConfig(cfg); err != nil {
			return nil, err
		}
		strategy.PluginID = req.PluginID
		strategy.RawConfig = req.RawConfig
		strategy.ExtensionAvailable = true
	} else {
		// 内置策略：算法标签与配置恰好给其一
		if (req.AlgorithmKind == "") == (req.Config == nil) {
			return nil, errors.Wrap(domain.ErrInvalidStrategyDefinition,
				"built-in strategies require exactly one of algorithm kind or config")
		}
		cfg := req.Config
		if cfg == nil {
			cfg, err = domain.DefaultConfig(req.AlgorithmKind)
			if err != nil {
				return nil, err
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		raw, err := cfg.Marshal()
		if err != nil {
			return nil, err
		}
		strategy.AlgorithmKind = cfg.Kind
		strategy.RawConfig = raw
		strategy.ExtensionAvailable = true
	}

	if err := s.repo.Save(ctx, strategy); err != nil {
		return nil, errors.Wrap(err, "failed to save strategy")
	}
	logger.Ctx(ctx).Info().Str("name", strategy.Name).Str("plugin", strategy.PluginID).Msg("strategy created")
	return strategy, nil
}

// Activate 激活一条策略。已有激活策略、目标不存在、
// 或目标扩展当前不可用时失败；提交前重跑一次可用性校验。
func (s *StrategyService) Activate(ctx context.Context, name string) error {
	ctx, span := s.tracer.Start(ctx, "strategy.Activate")
	defer span.End()
	span.SetAttributes(attribute.String("strategy.name", name))

	if err := s.lock.Lock(); err != nil {
		return errors.Wrap(err, "failed to acquire catalog lock")
	}
	defer s.lock.Unlock()

	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return err
	}
	if active != nil {
		return domain.ErrAnotherStrategyActive
	}

	strategy, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if strategy == nil {
		return domain.ErrStrategyNotFound
	}

	// 提交前的可用性复核：激活路径上的物化失败要向调用方暴露
	if _, err := s.materialize(ctx, strategy); err != nil {
		return err
	}

	strategy.Activate()
	if err := s.repo.Update(ctx, strategy); err != nil {
		return errors.Wrap(err, "failed to persist activation")
	}
	logger.Ctx(ctx).Info().Str("name", name).Msg("strategy activated")
	return nil
}

// Deactivate 停用当前激活的策略；没有激活策略时失败。
func (s *StrategyService) Deactivate(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "strategy.Deactivate")
	defer span.End()

	if err := s.lock.Lock(); err != nil {
		return errors.Wrap(err, "failed to acquire catalog lock")
	}
	defer s.lock.Unlock()

	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return err
	}
	if active == nil {
		return domain.ErrNoActiveStrategy
	}

	active.Deactivate()
	if err := s.repo.Update(ctx, active); err != nil {
		return errors.Wrap(err, "failed to persist deactivation")
	}
	logger.Ctx(ctx).Info().Str("name", active.Name).Msg("strategy deactivated")
	return nil
}

// Update 部分更新一条策略。
// 扩展策略只有描述和配置 JSON 可变，替换配置要重新过扩展校验；
// 内置策略把补丁逐字段合并进类型化配置，并重新生成序列化形式。
func (s *StrategyService) Update(ctx context.Context, name string, req *UpdateStrategyRequest) (*domain.ScoringStrategy, error) {
	ctx, span := s.tracer.Start(ctx, "strategy.Update")
	defer span.End()
	span.SetAttributes(attribute.String("strategy.name", name))

	strategy, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, domain.ErrStrategyNotFound
	}

	if req.Description != nil {
		strategy.Description = *req.Description
	}

	if strategy.PluginBacked() {
		if req.Patch != nil {
			return nil, errors.Wrap(domain.ErrInvalidStrategyDefinition,
				"extension-backed strategies accept raw config only")
		}
		if req.RawConfig != nil {
			ext, ok := s.registry.Get(strategy.PluginID)
			if !ok {
				return nil, domain.ErrExtensionNotFound
			}
			cfg, err := ext.ParseConfig(*req.RawConfig)
			if err != nil {
				return nil, err
			}
			if err := ext.ValidateConfig(cfg); err != nil {
				return nil, err
			}
			strategy.RawConfig = *req.RawConfig
		}
	} else {
		if req.RawConfig != nil {
			return nil, errors.Wrap(domain.ErrInvalidStrategyDefinition,
				"built-in strategies are updated field by field")
		}
		if req.Patch != nil {
			cfg, err := domain.UnmarshalStrategyConfig(strategy.RawConfig)
			if err != nil {
				return nil, err
			}
			if err := cfg.Merge(req.Patch); err != nil {
				return nil, err
			}
			raw, err := cfg.Marshal()
			if err != nil {
				return nil, err
			}
			strategy.RawConfig = raw
		}
	}

	if err := s.repo.Update(ctx, strategy); err != nil {
		return nil, errors.Wrap(err, "failed to persist update")
	}
	return strategy, nil
}

// Delete 删除一条策略；激活中的策略不可删除。
func (s *StrategyService) Delete(ctx context.Context, name string) error {
	ctx, span := s.tracer.Start(ctx, "strategy.Delete")
	defer span.End()

	strategy, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if strategy == nil {
		return domain.ErrStrategyNotFound
	}
	if strategy.Active {
		return domain.ErrCannotDeleteActive
	}
	return s.repo.Delete(ctx, name)
}

// List 返回全部策略，并为每条重算 extension_available 派生标记。
// 这里的物化失败只记录，不上抛。
func (s *StrategyService) List(ctx context.Context) ([]*domain.ScoringStrategy, error) {
	ctx, span := s.tracer.Start(ctx, "strategy.List")
	defer span.End()

	strategies, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, strategy := range strategies {
		if _, err := s.materialize(ctx, strategy); err != nil {
			strategy.ExtensionAvailable = false
			logger.Ctx(ctx).Warn().Err(err).Str("name", strategy.Name).Msg("strategy configuration is not materializable")
		} else {
			strategy.ExtensionAvailable = true
		}
	}
	return strategies, nil
}

// ListAvailableTypes 列出内置算法标签和当前注册的扩展。
func (s *StrategyService) ListAvailableTypes(ctx context.Context) *AvailableTypes {
	_, span := s.tracer.Start(ctx, "strategy.ListAvailableTypes")
	defer span.End()

	out := &AvailableTypes{}
	for _, kind := range algorithm.Kinds() {
		out.Builtin = append(out.Builtin, string(kind))
	}
	for _, ext := range s.registry.All() {
		out.Extensions = append(out.Extensions, ExtensionInfo{
			ID:          ext.ID(),
			Name:        ext.Name(),
			Description: ext.Description(),
			Schema:      ext.Schema(),
		})
	}
	return out
}

// ResolveAndScore 解析当前激活的策略并计算本次游玩的积分。
// 没有激活策略返回 ErrNoActiveStrategy；计分路径上的物化失败上抛。
func (s *StrategyService) ResolveAndScore(ctx context.Context, visit *park.Visit, attraction *park.Attraction, history []*park.Visit) (*ScoreResult, error) {
	ctx, span := s.tracer.Start(ctx, "strategy.ResolveAndScore")
	defer span.End()

	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, domain.ErrNoActiveStrategy
	}
	span.SetAttributes(
		attribute.String("strategy.name", active.Name),
		attribute.Bool("strategy.plugin_backed", active.PluginBacked()),
	)

	algo, err := s.materialize(ctx, active)
	if err != nil {
		return nil, err
	}

	points, err := algo.Compute(ctx, domain.Input{
		Visit:      visit,
		Attraction: attraction,
		History:    history,
		Now:        s.clock.Now(),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &ScoreResult{Points: points, StrategyName: active.Name}, nil
}

// ExtensionRemoved 实现扩展注册表的停用通知：
// reload 后某个扩展消失时，停用所有绑定它的策略。
func (s *StrategyService) ExtensionRemoved(ctx context.Context, pluginID string) error {
	strategies, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, strategy := range strategies {
		if strategy.PluginID != pluginID {
			continue
		}
		strategy.ExtensionAvailable = false
		if !strategy.Active {
			continue
		}
		strategy.Deactivate()
		if err := s.repo.Update(ctx, strategy); err != nil {
			return errors.Wrapf(err, "failed to deactivate strategy %s", strategy.Name)
		}
		logger.Ctx(ctx).Warn().
			Str("name", strategy.Name).
			Str("plugin", pluginID).
			Msg("strategy deactivated: backing extension disappeared")
	}
	return nil
}

// materialize 尝试把策略的序列化配置物化成可执行算法。
// 扩展缺席返回 ErrExtensionUnavailable；配置问题按各自的错误上抛。
func (s *StrategyService) materialize(ctx context.Context, strategy *domain.ScoringStrategy) (domain.Algorithm, error) {
	if strategy.PluginBacked() {
		ext, ok := s.registry.Get(strategy.PluginID)
		if !ok {
			return nil, errors.Wrapf(domain.ErrExtensionUnavailable, "extension %s", strategy.PluginID)
		}
		cfg, err := ext.ParseConfig(strategy.RawConfig)
		if err != nil {
			return nil, err
		}
		if err := ext.ValidateConfig(cfg); err != nil {
			return nil, err
		}
		return ext.Algorithm(cfg), nil
	}

	cfg, err := domain.UnmarshalStrategyConfig(strategy.RawConfig)
	if err != nil {
		return nil, err
	}
	return s.factory.New(cfg)
}
