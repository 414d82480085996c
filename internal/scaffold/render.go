package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
)

const defaultFileMode fs.FileMode = 0o644

// RenderOptions 控制渲染过程中的可选行为。
type RenderOptions struct {
	// TemplateDir 非空时，<TemplateDir>/<kind>/<FileTemplate.Name>.tmpl 会替换内置模板正文。
	TemplateDir string
}

// RenderedFile 是单个渲染完成的文件，Path 为相对类型输出目录的 slash 路径。
type RenderedFile struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
	// Override 记录正文是否来自 TemplateDir。
	Override bool
}

// Result 汇总一次渲染的输出，文件顺序与 KindMetadata.Files 声明顺序一致。
type Result struct {
	Kind   string
	Values Values
	Files  []RenderedFile
}

// Validate 按类型规则校验替换变量。
func Validate(meta KindMetadata, values Values) error {
	if err := ValidateName(meta.NameRule, values.Name); err != nil {
		return err
	}
	if meta.RequiresNamespace || values.Namespace != "" {
		if err := ValidateNamespace(values.Namespace); err != nil {
			return err
		}
	}
	return nil
}

// Render 用给定的变量渲染类型声明的全部文件。输出不包含时间戳等易变信息，
// 相同输入重复渲染得到逐字节一致的结果。
func Render(meta KindMetadata, values Values, opts RenderOptions) (*Result, error) {
	if err := Validate(meta, values); err != nil {
		return nil, err
	}

	result := &Result{
		Kind:   meta.Key,
		Values: values,
		Files:  make([]RenderedFile, 0, len(meta.Files)),
	}
	seen := make(map[string]struct{}, len(meta.Files))

	for _, file := range meta.Files {
		rendered, err := renderFile(meta.Key, file, values, opts)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[rendered.Path]; dup {
			return nil, fmt.Errorf("%s: 重复的输出路径 %s", meta.Key, rendered.Path)
		}
		seen[rendered.Path] = struct{}{}
		result.Files = append(result.Files, rendered)
	}
	return result, nil
}

func renderFile(kind string, file FileTemplate, values Values, opts RenderOptions) (RenderedFile, error) {
	rawPath, err := execute(kind+":"+file.Name+":path", file.Path, values)
	if err != nil {
		return RenderedFile{}, err
	}
	cleanPath, err := cleanRelativePath(rawPath)
	if err != nil {
		return RenderedFile{}, fmt.Errorf("%s/%s: %w", kind, file.Name, err)
	}

	body, override, err := resolveBody(kind, file, opts.TemplateDir)
	if err != nil {
		return RenderedFile{}, err
	}
	content, err := execute(kind+":"+file.Name, body, values)
	if err != nil {
		return RenderedFile{}, err
	}

	mode := file.Mode
	if mode == 0 {
		mode = defaultFileMode
	}
	return RenderedFile{
		Path:     cleanPath,
		Content:  []byte(content),
		Mode:     mode,
		Override: override,
	}, nil
}

// resolveBody 优先读取 TemplateDir 中的覆盖模板，不存在时回退内置正文。
func resolveBody(kind string, file FileTemplate, templateDir string) (string, bool, error) {
	if templateDir == "" || file.Name == "" {
		return file.Body, false, nil
	}
	candidate := filepath.Join(templateDir, kind, file.Name+".tmpl")
	data, err := os.ReadFile(candidate)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return file.Body, false, nil
		}
		return "", false, fmt.Errorf("读取覆盖模板 %s 失败: %w", candidate, err)
	}
	return string(data), true, nil
}

func execute(name, source string, values Values) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("解析模板 %s 失败: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("渲染模板 %s 失败: %w", name, err)
	}
	return buf.String(), nil
}

func cleanRelativePath(raw string) (string, error) {
	trimmed := strings.TrimSpace(filepath.ToSlash(raw))
	if trimmed == "" {
		return "", errors.New("输出路径为空")
	}
	if path.IsAbs(trimmed) || filepath.IsAbs(raw) {
		return "", fmt.Errorf("输出路径必须为相对路径: %s", raw)
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("输出路径越界: %s", raw)
	}
	return cleaned, nil
}
