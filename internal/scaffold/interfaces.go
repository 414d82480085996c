package scaffold

import (
	"io/fs"
	"strings"
	"unicode"
)

// Stability 描述脚手架类型的成熟度，方便诊断端区分 experimental/stable。
type Stability string

const (
	StabilityExperimental Stability = "experimental"
	StabilityStable       Stability = "stable"
)

// Language 标记生成文件的主要语言，仅用于展示与日志。
type Language string

const (
	LanguagePython Language = "python"
	LanguageSQL    Language = "sql"
	LanguageYAML   Language = "yaml"
)

// NameRule 决定 Values.Name 的校验方式。
type NameRule string

const (
	// NameRuleIdentifier 要求名称为合法的 Python 标识符且不是关键字。
	NameRuleIdentifier NameRule = "identifier"
	// NameRuleSlug 允许字母、数字、下划线、点与连字符，适用于目录/图名称。
	NameRuleSlug NameRule = "slug"
)

// FileTemplate 描述一个待生成的文件。Path 与 Body 都是 text/template 源码。
type FileTemplate struct {
	// Name 是模板的稳定标识，用于查找 TemplateDir 下的覆盖文件：<TemplateDir>/<kind>/<Name>.tmpl。
	Name string
	Path string
	Body string
	Mode fs.FileMode
}

// KindMetadata 记录一个脚手架类型的静态信息，供配置校验、渲染和诊断端使用。
type KindMetadata struct {
	Key         string
	Description string
	Language    Language
	Stability   Stability
	Files       []FileTemplate
	// DefaultDirectory 是相对输出根目录的默认子目录，可被 [[Kind]].Directory 或 --dir 覆盖。
	DefaultDirectory string
	NameRule         NameRule
	// RequiresNamespace 为 true 时渲染前必须得到合法的命名空间。
	RequiresNamespace bool
	// NamespaceFromName 为 true 时，未显式指定命名空间则使用 Name 本身。
	NamespaceFromName bool
	// GraphNode 表示生成结果可以作为节点登记到 graph.yml。
	GraphNode bool
}

// Values 是模板可见的替换变量。
type Values struct {
	Namespace string
	Name      string
}

// Key 返回 namespace.name 形式的全局键；命名空间为空时只返回名称。
func (v Values) Key() string {
	if v.Namespace == "" {
		return v.Name
	}
	return v.Namespace + "." + v.Name
}

// Title 将 snake_case 名称转为首字母大写、空格分隔的展示名。
func (v Values) Title() string {
	words := strings.FieldsFunc(v.Name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	if len(words) == 0 {
		return ""
	}
	title := strings.Join(words, " ")
	runes := []rune(title)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
