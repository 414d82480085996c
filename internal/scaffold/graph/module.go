// Package graph 注册图脚手架：<name>/graph.yml，节点列表初始为空。
package graph

import (
	_ "embed"

	"github.com/snapgen/snapgen/internal/scaffold"
)

//go:embed templates/graph.yml.tmpl
var graphTemplate string

const Key = "graph"

func init() {
	scaffold.MustRegister(Metadata())
}

// Metadata 返回 graph 类型的元数据，图名称使用宽松的 slug 规则且不需要命名空间。
func Metadata() scaffold.KindMetadata {
	return scaffold.KindMetadata{
		Key:         Key,
		Description: "Project graph definition (graph.yml) with an empty node list",
		Language:    scaffold.LanguageYAML,
		Stability:   scaffold.StabilityStable,
		Files: []scaffold.FileTemplate{
			{
				Name: "graph.yml",
				Path: "{{.Name}}/graph.yml",
				Body: graphTemplate,
			},
		},
		NameRule: scaffold.NameRuleSlug,
	}
}
