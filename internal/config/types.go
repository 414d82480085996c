package config

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/snapgen/snapgen/internal/scaffold"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if seconds, err := time.ParseDuration(raw); err == nil {
		*d = Duration(seconds)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// DefaultNamespace 与数据函数框架的本地命名空间保持一致。
const DefaultNamespace = "_local"

// GlobalConfig 描述全局生成行为与 serve 模式参数，所有脚手架类型共享。
type GlobalConfig struct {
	LogLevel         string   `mapstructure:"LogLevel"`
	LogFilePath      string   `mapstructure:"LogFilePath"`
	LogMaxSize       int      `mapstructure:"LogMaxSize"`
	LogMaxBackups    int      `mapstructure:"LogMaxBackups"`
	LogCompress      bool     `mapstructure:"LogCompress"`
	OutputRoot       string   `mapstructure:"OutputRoot"`
	DefaultNamespace string   `mapstructure:"DefaultNamespace"`
	TemplateDir      string   `mapstructure:"TemplateDir"`
	ListenPort       int      `mapstructure:"ListenPort"`
	ReadTimeout      Duration `mapstructure:"ReadTimeout"`
	WriteTimeout     Duration `mapstructure:"WriteTimeout"`
}

// KindConfig 允许按脚手架类型覆盖默认命名空间与输出目录。
type KindConfig struct {
	Name      string `mapstructure:"Name"`
	Namespace string `mapstructure:"Namespace"`
	Directory string `mapstructure:"Directory"`
	Disabled  bool   `mapstructure:"Disabled"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Kinds  []KindConfig `mapstructure:"Kind"`
}

// Kind 返回指定类型的覆盖配置，未配置时第二个返回值为 false。
func (c *Config) Kind(key string) (KindConfig, bool) {
	if c == nil {
		return KindConfig{}, false
	}
	normalized := strings.ToLower(strings.TrimSpace(key))
	for _, kind := range c.Kinds {
		if strings.EqualFold(strings.TrimSpace(kind.Name), normalized) {
			return kind, true
		}
	}
	return KindConfig{}, false
}

// KindEnabled 返回类型是否允许生成；未出现在 [[Kind]] 中的类型默认启用。
func (c *Config) KindEnabled(key string) bool {
	kind, ok := c.Kind(key)
	return !ok || !kind.Disabled
}

// EffectiveNamespace 依次取显式请求、[[Kind]].Namespace、（可选）名称本身、全局 DefaultNamespace。
func (c *Config) EffectiveNamespace(meta scaffold.KindMetadata, requested, name string) string {
	if ns := strings.TrimSpace(requested); ns != "" {
		return ns
	}
	if !meta.RequiresNamespace {
		return ""
	}
	if kind, ok := c.Kind(meta.Key); ok && kind.Namespace != "" {
		return kind.Namespace
	}
	if meta.NamespaceFromName {
		return name
	}
	if c != nil && c.Global.DefaultNamespace != "" {
		return c.Global.DefaultNamespace
	}
	return DefaultNamespace
}

// EffectiveDirectory 依次取显式请求、[[Kind]].Directory 与类型默认目录，返回 slash 风格的相对路径。
func (c *Config) EffectiveDirectory(meta scaffold.KindMetadata, requested string) string {
	dir := strings.TrimSpace(requested)
	if dir == "" {
		if kind, ok := c.Kind(meta.Key); ok {
			dir = kind.Directory
		}
	}
	if dir == "" {
		dir = meta.DefaultDirectory
	}
	if dir == "" {
		return ""
	}
	cleaned := path.Clean(strings.ReplaceAll(dir, "\\", "/"))
	if cleaned == "." {
		return ""
	}
	return cleaned
}

// KindSummaries 返回 [[Kind]] 覆盖的摘要，例如 function:core:functions，供日志字段使用。
func KindSummaries(kinds []KindConfig) []string {
	if len(kinds) == 0 {
		return nil
	}
	result := make([]string, len(kinds))
	for i, kind := range kinds {
		state := kind.Directory
		if kind.Disabled {
			state = "disabled"
		}
		result[i] = fmt.Sprintf("%s:%s:%s", kind.Name, kind.Namespace, state)
	}
	return result
}
