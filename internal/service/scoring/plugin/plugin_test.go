package plugin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	park "skypark/domain"
	"skypark/internal/service/scoring/domain"
)

const sampleDescriptor = `
id: double-up
name: 积分翻倍
description: 按配置的倍数放大基础分
config_schema:
  multiplier: int
default_config:
  multiplier: 2
validate: 'int(config.multiplier) >= 1'
expression: 'visit.base_points * int(config.multiplier)'
`

func compileSample(t *testing.T) *Plugin {
	t.Helper()
	desc, err := ParseDescriptor([]byte(sampleDescriptor))
	require.NoError(t, err)
	p, err := Compile(desc)
	require.NoError(t, err)
	return p
}

func TestParseDescriptorRequiredFields(t *testing.T) {
	_, err := ParseDescriptor([]byte("name: nameless"))
	assert.Error(t, err, "缺 id 应被拒绝")

	_, err = ParseDescriptor([]byte("id: no-expression"))
	assert.Error(t, err, "缺 expression 应被拒绝")

	desc, err := ParseDescriptor([]byte("id: terse\nexpression: '1'"))
	require.NoError(t, err)
	assert.Equal(t, "terse", desc.Name, "缺省名称回退到 id")
}

func TestPluginParseConfig(t *testing.T) {
	p := compileSample(t)

	cfg, err := p.ParseConfig("")
	require.NoError(t, err)
	assert.EqualValues(t, 2, cfg["multiplier"], "空配置退回缺省值")

	cfg, err = p.ParseConfig(`{"multiplier": 5}`)
	require.NoError(t, err)
	assert.EqualValues(t, 5, cfg["multiplier"])

	_, err = p.ParseConfig(`{broken`)
	assert.ErrorIs(t, err, domain.ErrExtensionConfigInvalid)
}

func TestPluginValidateConfig(t *testing.T) {
	p := compileSample(t)

	require.NoError(t, p.ValidateConfig(map[string]interface{}{"multiplier": 3}))
	assert.ErrorIs(t, p.ValidateConfig(map[string]interface{}{"multiplier": 0}), domain.ErrExtensionConfigInvalid)
}

func TestPluginCompute(t *testing.T) {
	p := compileSample(t)
	algo := p.Algorithm(map[string]interface{}{"multiplier": 3})

	points, err := algo.Compute(context.Background(), domain.Input{
		Visit:      &park.Visit{ID: "v1", VisitorID: "visitor-1", AttractionName: "Sky Screamer", EntryAt: time.Now()},
		Attraction: &park.Attraction{Name: "Sky Screamer", Type: "ROLLER_COASTER", BasePoints: 100},
		Now:        time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 300, points)
}

func TestPluginComputeSeesHistory(t *testing.T) {
	desc, err := ParseDescriptor([]byte(`
id: history-counter
expression: 'size(history) * 10'
`))
	require.NoError(t, err)
	p, err := Compile(desc)
	require.NoError(t, err)

	algo := p.Algorithm(nil)
	points, err := algo.Compute(context.Background(), domain.Input{
		Visit:      &park.Visit{},
		Attraction: &park.Attraction{},
		History: []*park.Visit{
			{AttractionName: "a", EntryAt: time.Now()},
			{AttractionName: "b", EntryAt: time.Now()},
		},
		Now: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 20, points)
}

func TestCompileRejectsBadExpressions(t *testing.T) {
	_, err := Compile(&Descriptor{ID: "bad", Expression: "visit.base_points +"})
	assert.Error(t, err)

	_, err = Compile(&Descriptor{ID: "bad-validate", Expression: "1", Validate: "((("})
	assert.Error(t, err)
}

func TestComputeRejectsNonNumericResult(t *testing.T) {
	desc, err := ParseDescriptor([]byte("id: chatty\nexpression: '\"words\"'"))
	require.NoError(t, err)
	p, err := Compile(desc)
	require.NoError(t, err)

	_, err = p.Algorithm(nil).Compute(context.Background(), domain.Input{
		Visit:      &park.Visit{},
		Attraction: &park.Attraction{},
		Now:        time.Now(),
	})
	assert.Error(t, err)
}
