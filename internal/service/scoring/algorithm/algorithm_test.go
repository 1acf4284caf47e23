package algorithm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	park "skypark/domain"
	"skypark/internal/service/scoring/domain"
)

var noon = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func coaster() *park.Attraction {
	return &park.Attraction{Name: "Sky Screamer", Type: "ROLLER_COASTER", BasePoints: 100}
}

func visitAt(attraction string, entryAt time.Time) *park.Visit {
	return &park.Visit{ID: "v", VisitorID: "visitor-1", AttractionName: attraction, EntryAt: entryAt}
}

func TestByAttractionType(t *testing.T) {
	cfg := &domain.StrategyConfig{
		Kind:           domain.KindByAttractionType,
		AttractionType: &domain.AttractionTypeConfig{Points: map[string]int{"ROLLER_COASTER": 150}},
	}
	algo, err := NewByAttractionType(cfg)
	require.NoError(t, err)

	points, err := algo.Compute(context.Background(), domain.Input{
		Visit:      visitAt("Sky Screamer", noon),
		Attraction: coaster(),
	})
	require.NoError(t, err)
	assert.Equal(t, 150, points)

	// 表里没有的类型回退到设施基础分
	points, err = algo.Compute(context.Background(), domain.Input{
		Visit:      visitAt("Splash Canyon", noon),
		Attraction: &park.Attraction{Name: "Splash Canyon", Type: "WATER_RIDE", BasePoints: 80},
	})
	require.NoError(t, err)
	assert.Equal(t, 80, points)
}

func TestByAttractionTypeRejectsMismatchedConfig(t *testing.T) {
	_, err := NewByAttractionType(&domain.StrategyConfig{Kind: domain.KindCombo, Combo: &domain.ComboConfig{}})
	assert.ErrorIs(t, err, domain.ErrConfigurationMismatch)
}

func TestComboWithinWindow(t *testing.T) {
	cfg := &domain.StrategyConfig{
		Kind:  domain.KindCombo,
		Combo: &domain.ComboConfig{WindowMinutes: 10, Bonus: 50, MinAttractionCount: 2},
	}
	algo, err := NewCombo(cfg)
	require.NoError(t, err)

	tests := []struct {
		name    string
		history []*park.Visit
		want    int
	}{
		{
			"窗口内的前一设施触发连击",
			[]*park.Visit{visitAt("Ghost Manor", noon.Add(-5 * time.Minute))},
			150,
		},
		{
			"窗口边界含端点",
			[]*park.Visit{visitAt("Ghost Manor", noon.Add(-10 * time.Minute))},
			150,
		},
		{
			"窗口外不触发",
			[]*park.Visit{visitAt("Ghost Manor", noon.Add(-15 * time.Minute))},
			100,
		},
		{
			"同一设施的记录不计数",
			[]*park.Visit{visitAt("Sky Screamer", noon.Add(-5 * time.Minute))},
			100,
		},
		{
			"重复设施按名称去重",
			[]*park.Visit{
				visitAt("Ghost Manor", noon.Add(-3 * time.Minute)),
				visitAt("Ghost Manor", noon.Add(-8 * time.Minute)),
			},
			150,
		},
		{"无历史", nil, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := algo.Compute(context.Background(), domain.Input{
				Visit:      visitAt("Sky Screamer", noon),
				Attraction: coaster(),
				History:    tt.history,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, points)
		})
	}
}

type stubEventRepo struct {
	event *park.Event
}

func (r *stubEventRepo) FindByName(_ context.Context, name string) (*park.Event, error) {
	if r.event != nil && r.event.Name == name {
		return r.event, nil
	}
	return nil, nil
}

func TestByEventMultiplier(t *testing.T) {
	start := time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	events := &stubEventRepo{event: &park.Event{
		Name:        "Night Lights Parade",
		StartTime:   start,
		Attractions: []string{"Sky Screamer"},
	}}
	cfg := &domain.StrategyConfig{
		Kind:  domain.KindByEvent,
		Event: &domain.EventConfig{Multiplier: 2, EventName: "Night Lights Parade"},
	}
	algo, err := NewByEvent(cfg, events)
	require.NoError(t, err)

	input := func(now time.Time, attraction *park.Attraction) domain.Input {
		return domain.Input{Visit: visitAt(attraction.Name, now), Attraction: attraction, Now: now}
	}

	// 窗口内且设施在名单上：倍数只乘不加
	points, err := algo.Compute(context.Background(), input(start.Add(time.Hour), coaster()))
	require.NoError(t, err)
	assert.Equal(t, 200, points)

	// 窗口外：基础分
	points, err = algo.Compute(context.Background(), input(start.Add(5*time.Hour), coaster()))
	require.NoError(t, err)
	assert.Equal(t, 100, points)

	// 设施不在活动名单上：基础分
	other := &park.Attraction{Name: "Splash Canyon", Type: "WATER_RIDE", BasePoints: 80}
	points, err = algo.Compute(context.Background(), input(start.Add(time.Hour), other))
	require.NoError(t, err)
	assert.Equal(t, 80, points)
}

func TestByEventMissingEventAwardsBase(t *testing.T) {
	cfg := &domain.StrategyConfig{
		Kind:  domain.KindByEvent,
		Event: &domain.EventConfig{Multiplier: 3, EventName: "gone"},
	}
	algo, err := NewByEvent(cfg, &stubEventRepo{})
	require.NoError(t, err)

	points, err := algo.Compute(context.Background(), domain.Input{
		Visit:      visitAt("Sky Screamer", noon),
		Attraction: coaster(),
		Now:        noon,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, points)
}

func TestFactoryDispatch(t *testing.T) {
	f := NewFactory(&stubEventRepo{})

	algo, err := f.New(&domain.StrategyConfig{
		Kind:  domain.KindCombo,
		Combo: &domain.ComboConfig{WindowMinutes: 30, Bonus: 50, MinAttractionCount: 3},
	})
	require.NoError(t, err)
	assert.IsType(t, &Combo{}, algo)

	_, err = f.New(&domain.StrategyConfig{Kind: "MYSTERY"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedConfigType)

	_, err = f.New(nil)
	assert.ErrorIs(t, err, domain.ErrConfigurationMismatch)
}
