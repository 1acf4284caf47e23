package plugin

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Descriptor 是扩展模块的显式登记入口：一个 YAML 描述文件，
// 声明扩展的标识、自述信息、配置模式、缺省配置，以及两段 CEL 表达式
// （配置校验 + 积分计算）。宿主只认描述文件，不做任何类型扫描。
//
// 示例:
//
//	id: rainy-day-bonus
//	name: 雨天加成
//	description: 雨天入园的游客积分翻倍
//	config_schema:
//	  multiplier: int
//	default_config:
//	  multiplier: 2
//	validate: 'int(config.multiplier) >= 1'
//	expression: 'visit.base_points * int(config.multiplier)'
type Descriptor struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// ConfigSchema 描述配置字段及其类型，仅供管理界面展示。
	ConfigSchema map[string]string `yaml:"config_schema"`

	// DefaultConfig 内联缺省配置；与 DefaultConfigFile 二选一。
	DefaultConfig map[string]interface{} `yaml:"default_config"`
	// DefaultConfigFile 指向同目录下的 JSON 缺省配置文件，
	// 随描述文件一起复制进暂存目录。
	DefaultConfigFile string `yaml:"default_config_file"`

	// Validate 是针对 config 变量的 CEL 布尔表达式，可省略。
	Validate string `yaml:"validate"`
	// Expression 是积分计算的 CEL 表达式，可见变量:
	// visit(map), config(map), history(list of map), now(timestamp)。
	Expression string `yaml:"expression"`
}

// ParseDescriptor 解析并检查一份描述文件。
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, errors.Wrap(err, "malformed descriptor")
	}
	if desc.ID == "" {
		return nil, errors.New("descriptor is missing required field: id")
	}
	if desc.Expression == "" {
		return nil, errors.Errorf("descriptor %s is missing required field: expression", desc.ID)
	}
	if desc.Name == "" {
		desc.Name = desc.ID
	}
	return &desc, nil
}
