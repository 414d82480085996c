package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/snapgen/snapgen/internal/scaffold"
)

// Validate 针对语义级别做进一步校验，防止非法配置进入生成流程。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if strings.TrimSpace(g.OutputRoot) == "" {
		return newFieldError("Global.OutputRoot", "不能为空")
	}
	if err := scaffold.ValidateNamespace(g.DefaultNamespace); err != nil {
		return newFieldError("Global.DefaultNamespace", err.Error())
	}
	if g.ReadTimeout.DurationValue() <= 0 {
		return newFieldError("Global.ReadTimeout", "必须大于 0")
	}
	if g.WriteTimeout.DurationValue() <= 0 {
		return newFieldError("Global.WriteTimeout", "必须大于 0")
	}
	if g.TemplateDir != "" {
		info, err := os.Stat(g.TemplateDir)
		if err != nil {
			return newFieldError("Global.TemplateDir", fmt.Sprintf("无法访问: %v", err))
		}
		if !info.IsDir() {
			return newFieldError("Global.TemplateDir", "必须是目录")
		}
	}

	seenNames := map[string]struct{}{}
	for i := range c.Kinds {
		kind := &c.Kinds[i]
		normalized := strings.ToLower(strings.TrimSpace(kind.Name))
		if normalized == "" {
			return newFieldError("Kind[].Name", "不能为空")
		}
		if _, exists := seenNames[normalized]; exists {
			return newFieldError(kindField(normalized, "Name"), "重复")
		}
		seenNames[normalized] = struct{}{}
		kind.Name = normalized

		meta, ok := scaffold.Resolve(normalized)
		if !ok {
			return newFieldError(kindField(normalized, "Name"), "未注册类型，仅支持 "+strings.Join(scaffold.Keys(), "|"))
		}
		if kind.Namespace != "" {
			if !meta.RequiresNamespace {
				return newFieldError(kindField(normalized, "Namespace"), "该类型不使用命名空间")
			}
			if err := scaffold.ValidateNamespace(kind.Namespace); err != nil {
				return newFieldError(kindField(normalized, "Namespace"), err.Error())
			}
		}
		if err := validateDirectory(kind.Directory); err != nil {
			return newFieldError(kindField(normalized, "Directory"), err.Error())
		}
	}

	return nil
}

// validateDirectory 要求目录为输出根目录内的相对路径。
func validateDirectory(dir string) error {
	if dir == "" {
		return nil
	}
	if filepath.IsAbs(dir) || strings.HasPrefix(dir, "/") {
		return errors.New("必须为相对路径")
	}
	cleaned := path.Clean(strings.ReplaceAll(dir, "\\", "/"))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return errors.New("不能指向输出目录之外")
	}
	return nil
}

// ValidateDirectory 暴露给 CLI/生成器，对 --dir 复用相同规则。
func ValidateDirectory(dir string) error {
	return validateDirectory(strings.TrimSpace(dir))
}
