package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultPath 是未指定 --config / SNAPGEN_CONFIG 时读取的配置文件。
const DefaultPath = "snapgen.toml"

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	if err := rejectKindLevelGlobals(v); err != nil {
		return nil, err
	}
	return decode(v)
}

// LoadOptional 在文件不存在时回退到内置默认值；explicit 为 true 时文件必须存在。
func LoadOptional(path string, explicit bool) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default()
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}
	return Load(path)
}

// Default 返回仅包含默认值的配置，等价于加载一个空文件。
func Default() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Kinds {
		applyKindDefaults(&cfg.Kinds[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absOutput, err := filepath.Abs(cfg.Global.OutputRoot)
	if err != nil {
		return nil, fmt.Errorf("无法解析输出目录: %w", err)
	}
	cfg.Global.OutputRoot = absOutput

	if cfg.Global.TemplateDir != "" {
		absTemplates, err := filepath.Abs(cfg.Global.TemplateDir)
		if err != nil {
			return nil, fmt.Errorf("无法解析模板目录: %w", err)
		}
		cfg.Global.TemplateDir = absTemplates
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("OutputRoot", ".")
	v.SetDefault("DefaultNamespace", DefaultNamespace)
	v.SetDefault("TemplateDir", "")
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("ReadTimeout", "10s")
	v.SetDefault("WriteTimeout", "10s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if strings.TrimSpace(g.OutputRoot) == "" {
		g.OutputRoot = "."
	}
	if strings.TrimSpace(g.DefaultNamespace) == "" {
		g.DefaultNamespace = DefaultNamespace
	}
	if g.ReadTimeout.DurationValue() == 0 {
		g.ReadTimeout = Duration(10 * time.Second)
	}
	if g.WriteTimeout.DurationValue() == 0 {
		g.WriteTimeout = Duration(10 * time.Second)
	}
}

func applyKindDefaults(k *KindConfig) {
	k.Name = strings.ToLower(strings.TrimSpace(k.Name))
	k.Namespace = strings.TrimSpace(k.Namespace)
	k.Directory = strings.TrimSpace(k.Directory)
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// rejectKindLevelGlobals 拒绝写在 [[Kind]] 内的全局字段，避免用户误以为可以按类型覆盖。
func rejectKindLevelGlobals(v *viper.Viper) error {
	raw := v.Get("Kind")
	kinds, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	for idx, entry := range kinds {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		for _, key := range []string{"TemplateDir", "OutputRoot"} {
			if _, exists := lookupFold(m, key); exists {
				name := fmt.Sprintf("#%d", idx)
				if rawName, ok := lookupFold(m, "Name"); ok {
					if s, ok := rawName.(string); ok && s != "" {
						name = s
					}
				}
				return newFieldError(kindField(name, key), "仅支持全局配置，请移到文件顶层")
			}
		}
	}

	return nil
}

// lookupFold 按大小写不敏感的方式读取 map 字段，兼容 viper 对嵌套键的规范化差异。
func lookupFold(m map[string]interface{}, key string) (interface{}, bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}
