package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	park "skypark/domain"
	"skypark/internal/service/scoring/algorithm"
	"skypark/internal/service/scoring/domain"
	"skypark/internal/service/scoring/domain/port"
)

// ---- 测试替身 ----

type memStrategyRepo struct {
	strategies map[string]*domain.ScoringStrategy
}

func newMemStrategyRepo() *memStrategyRepo {
	return &memStrategyRepo{strategies: make(map[string]*domain.ScoringStrategy)}
}

func (r *memStrategyRepo) Save(_ context.Context, s *domain.ScoringStrategy) error {
	cp := *s
	r.strategies[s.Name] = &cp
	return nil
}

func (r *memStrategyRepo) Update(_ context.Context, s *domain.ScoringStrategy) error {
	cp := *s
	r.strategies[s.Name] = &cp
	return nil
}

func (r *memStrategyRepo) Delete(_ context.Context, name string) error {
	delete(r.strategies, name)
	return nil
}

func (r *memStrategyRepo) FindByName(_ context.Context, name string) (*domain.ScoringStrategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memStrategyRepo) FindActive(_ context.Context) (*domain.ScoringStrategy, error) {
	for _, s := range r.strategies {
		if s.Active {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memStrategyRepo) ListAll(_ context.Context) ([]*domain.ScoringStrategy, error) {
	out := make([]*domain.ScoringStrategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

type fakeExtension struct {
	id          string
	validateErr error
	points      int
}

func (e *fakeExtension) ID() string                            { return e.id }
func (e *fakeExtension) Name() string                          { return e.id }
func (e *fakeExtension) Description() string                   { return "" }
func (e *fakeExtension) Schema() map[string]string             { return nil }
func (e *fakeExtension) DefaultConfig() map[string]interface{} { return map[string]interface{}{} }

func (e *fakeExtension) ParseConfig(string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (e *fakeExtension) ValidateConfig(map[string]interface{}) error {
	return e.validateErr
}

func (e *fakeExtension) Algorithm(map[string]interface{}) domain.Algorithm {
	return fixedAlgorithm(e.points)
}

type fixedAlgorithm int

func (a fixedAlgorithm) Compute(context.Context, domain.Input) (int, error) { return int(a), nil }

type fakeRegistry struct {
	extensions map[string]port.Extension
}

func (r *fakeRegistry) Get(id string) (port.Extension, bool) {
	e, ok := r.extensions[id]
	if !ok {
		return nil, false
	}
	return e, true
}

func (r *fakeRegistry) All() []port.Extension {
	out := make([]port.Extension, 0, len(r.extensions))
	for _, e := range r.extensions {
		out = append(out, e)
	}
	return out
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type stubEventRepo struct{}

func (stubEventRepo) FindByName(context.Context, string) (*park.Event, error) { return nil, nil }

func newTestService(registry *fakeRegistry) (*StrategyService, *memStrategyRepo) {
	repo := newMemStrategyRepo()
	if registry == nil {
		registry = &fakeRegistry{extensions: map[string]port.Extension{}}
	}
	svc := NewStrategyService(
		repo,
		registry,
		algorithm.NewFactory(stubEventRepo{}),
		&port.LocalCatalogLock{},
		fixedClock(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)),
		otel.Tracer("test"),
	)
	return svc, repo
}

func comboRequest(name string) *CreateStrategyRequest {
	return &CreateStrategyRequest{
		Name: name,
		Config: &domain.StrategyConfig{
			Kind:  domain.KindCombo,
			Combo: &domain.ComboConfig{WindowMinutes: 10, Bonus: 50, MinAttractionCount: 2},
		},
	}
}

// ---- Create ----

func TestCreateBuiltinWithKindUsesDefaultConfig(t *testing.T) {
	svc, _ := newTestService(nil)

	s, err := svc.Create(context.Background(), &CreateStrategyRequest{
		Name:          "combo-default",
		AlgorithmKind: domain.KindCombo,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindCombo, s.AlgorithmKind)
	assert.False(t, s.Active, "新策略不应自动激活")

	cfg, err := domain.UnmarshalStrategyConfig(s.RawConfig)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Combo.WindowMinutes)
}

func TestCreateBuiltinWithConfigInfersKind(t *testing.T) {
	svc, _ := newTestService(nil)

	s, err := svc.Create(context.Background(), comboRequest("combo"))
	require.NoError(t, err)
	assert.Equal(t, domain.KindCombo, s.AlgorithmKind)
	assert.False(t, s.PluginBacked())
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), comboRequest("combo"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), comboRequest("combo"))
	assert.ErrorIs(t, err, domain.ErrStrategyNameTaken)
}

func TestCreateRejectsAmbiguousDefinitions(t *testing.T) {
	svc, _ := newTestService(&fakeRegistry{extensions: map[string]port.Extension{
		"bonus": &fakeExtension{id: "bonus"},
	}})

	// 既没给算法标签也没给配置
	_, err := svc.Create(context.Background(), &CreateStrategyRequest{Name: "empty"})
	assert.ErrorIs(t, err, domain.ErrInvalidStrategyDefinition)

	// 标签和配置都给了
	req := comboRequest("both")
	req.AlgorithmKind = domain.KindCombo
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidStrategyDefinition)

	// 扩展标识混搭内置算法标签
	_, err = svc.Create(context.Background(), &CreateStrategyRequest{
		Name:          "mixed",
		PluginID:      "bonus",
		AlgorithmKind: domain.KindCombo,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStrategyDefinition)
}

func TestCreatePluginBacked(t *testing.T) {
	svc, _ := newTestService(&fakeRegistry{extensions: map[string]port.Extension{
		"bonus": &fakeExtension{id: "bonus", points: 42},
	}})

	s, err := svc.Create(context.Background(), &CreateStrategyRequest{
		Name:      "plugin-strategy",
		PluginID:  "bonus",
		RawConfig: `{"x":1}`,
	})
	require.NoError(t, err)
	assert.True(t, s.PluginBacked())
	assert.True(t, s.ExtensionAvailable)
}

func TestCreateUnknownExtension(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), &CreateStrategyRequest{
		Name:     "ghost",
		PluginID: "missing",
	})
	assert.ErrorIs(t, err, domain.ErrExtensionNotFound)
}

func TestCreateRejectsConfigTheExtensionRefuses(t *testing.T) {
	svc, _ := newTestService(&fakeRegistry{extensions: map[string]port.Extension{
		"picky": &fakeExtension{id: "picky", validateErr: domain.ErrExtensionConfigInvalid},
	}})

	_, err := svc.Create(context.Background(), &CreateStrategyRequest{
		Name:     "picky-strategy",
		PluginID: "picky",
	})
	assert.ErrorIs(t, err, domain.ErrExtensionConfigInvalid)
}

// ---- Activate / Deactivate ----

func TestSingleActiveInvariant(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, comboRequest("first"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, comboRequest("second"))
	require.NoError(t, err)

	require.NoError(t, svc.Activate(ctx, "first"))
	assert.ErrorIs(t, svc.Activate(ctx, "second"), domain.ErrAnotherStrategyActive)

	require.NoError(t, svc.Deactivate(ctx))
	require.NoError(t, svc.Activate(ctx, "second"))
}

func TestActivateMissingStrategy(t *testing.T) {
	svc, _ := newTestService(nil)
	assert.ErrorIs(t, svc.Activate(context.Background(), "nope"), domain.ErrStrategyNotFound)
}

func TestActivateRechecksExtensionAvailability(t *testing.T) {
	registry := &fakeRegistry{extensions: map[string]port.Extension{
		"bonus": &fakeExtension{id: "bonus"},
	}}
	svc, _ := newTestService(registry)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateStrategyRequest{Name: "plugin-strategy", PluginID: "bonus"})
	require.NoError(t, err)

	// 扩展在创建后消失：激活必须失败
	delete(registry.extensions, "bonus")
	assert.ErrorIs(t, svc.Activate(ctx, "plugin-strategy"), domain.ErrExtensionUnavailable)
}

func TestDeactivateWithoutActiveStrategy(t *testing.T) {
	svc, _ := newTestService(nil)
	assert.ErrorIs(t, svc.Deactivate(context.Background()), domain.ErrNoActiveStrategy)
}

// ---- Update / Delete ----

func TestUpdateBuiltinMergesPatch(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, comboRequest("combo"))
	require.NoError(t, err)

	bonus := 99
	s, err := svc.Update(ctx, "combo", &UpdateStrategyRequest{
		Patch: &domain.ConfigPatch{Bonus: &bonus},
	})
	require.NoError(t, err)

	cfg, err := domain.UnmarshalStrategyConfig(s.RawConfig)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Combo.Bonus)
	assert.Equal(t, 10, cfg.Combo.WindowMinutes)
}

func TestUpdateBuiltinRejectsRawConfig(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, comboRequest("combo"))
	require.NoError(t, err)

	raw := `{"whatever":true}`
	_, err = svc.Update(ctx, "combo", &UpdateStrategyRequest{RawConfig: &raw})
	assert.ErrorIs(t, err, domain.ErrInvalidStrategyDefinition)
}

func TestUpdatePluginRejectsPatch(t *testing.T) {
	svc, _ := newTestService(&fakeRegistry{extensions: map[string]port.Extension{
		"bonus": &fakeExtension{id: "bonus"},
	}})
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateStrategyRequest{Name: "plugin-strategy", PluginID: "bonus"})
	require.NoError(t, err)

	bonus := 1
	_, err = svc.Update(ctx, "plugin-strategy", &UpdateStrategyRequest{
		Patch: &domain.ConfigPatch{Bonus: &bonus},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStrategyDefinition)
}

func TestDeleteActiveStrategyRefused(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, comboRequest("combo"))
	require.NoError(t, err)
	require.NoError(t, svc.Activate(ctx, "combo"))

	assert.ErrorIs(t, svc.Delete(ctx, "combo"), domain.ErrCannotDeleteActive)

	require.NoError(t, svc.Deactivate(ctx))
	require.NoError(t, svc.Delete(ctx, "combo"))
	assert.ErrorIs(t, svc.Delete(ctx, "combo"), domain.ErrStrategyNotFound)
}

// ---- ResolveAndScore ----

func TestResolveAndScoreWithoutActiveStrategy(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.ResolveAndScore(context.Background(), &park.Visit{}, &park.Attraction{}, nil)
	assert.ErrorIs(t, err, domain.ErrNoActiveStrategy)
}

func TestResolveAndScoreBuiltin(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, comboRequest("combo"))
	require.NoError(t, err)
	require.NoError(t, svc.Activate(ctx, "combo"))

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	result, err := svc.ResolveAndScore(ctx,
		&park.Visit{VisitorID: "v1", AttractionName: "Sky Screamer", EntryAt: now},
		&park.Attraction{Name: "Sky Screamer", BasePoints: 100},
		[]*park.Visit{{VisitorID: "v1", AttractionName: "Ghost Manor", EntryAt: now.Add(-5 * time.Minute)}},
	)
	require.NoError(t, err)
	assert.Equal(t, 150, result.Points)
	assert.Equal(t, "combo", result.StrategyName)
}

func TestResolveAndScorePluginBacked(t *testing.T) {
	svc, _ := newTestService(&fakeRegistry{extensions: map[string]port.Extension{
		"bonus": &fakeExtension{id: "bonus", points: 42},
	}})
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateStrategyRequest{Name: "plugin-strategy", PluginID: "bonus"})
	require.NoError(t, err)
	require.NoError(t, svc.Activate(ctx, "plugin-strategy"))

	result, err := svc.ResolveAndScore(ctx, &park.Visit{}, &park.Attraction{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, result.Points)
}

// ---- 扩展下线 ----

func TestExtensionRemovedDeactivatesBoundStrategies(t *testing.T) {
	registry := &fakeRegistry{extensions: map[string]port.Extension{
		"bonus": &fakeExtension{id: "bonus"},
	}}
	svc, repo := newTestService(registry)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateStrategyRequest{Name: "plugin-strategy", PluginID: "bonus"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, comboRequest("builtin"))
	require.NoError(t, err)
	require.NoError(t, svc.Activate(ctx, "plugin-strategy"))

	delete(registry.extensions, "bonus")
	require.NoError(t, svc.ExtensionRemoved(ctx, "bonus"))

	s, err := repo.FindByName(ctx, "plugin-strategy")
	require.NoError(t, err)
	assert.False(t, s.Active, "绑定消失扩展的激活策略应被停用")

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestListRecomputesExtensionAvailability(t *testing.T) {
	registry := &fakeRegistry{extensions: map[string]port.Extension{
		"bonus": &fakeExtension{id: "bonus"},
	}}
	svc, _ := newTestService(registry)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateStrategyRequest{Name: "plugin-strategy", PluginID: "bonus"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, comboRequest("builtin"))
	require.NoError(t, err)

	delete(registry.extensions, "bonus")

	strategies, err := svc.List(ctx)
	require.NoError(t, err)
	byName := make(map[string]*domain.ScoringStrategy)
	for _, s := range strategies {
		byName[s.Name] = s
	}
	assert.False(t, byName["plugin-strategy"].ExtensionAvailable)
	assert.True(t, byName["builtin"].ExtensionAvailable)
}
