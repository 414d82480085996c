// Package function 注册数据函数脚手架：<name>/<name>.py，内含可编辑的函数桩。
package function

import (
	_ "embed"

	"github.com/snapgen/snapgen/internal/scaffold"
)

//go:embed templates/function.py.tmpl
var functionTemplate string

// Key 是 function 类型的注册键。
const Key = "function"

func init() {
	scaffold.MustRegister(Metadata())
}

// Metadata 返回 function 类型的元数据，测试可直接复用而无需依赖全局注册表。
func Metadata() scaffold.KindMetadata {
	return scaffold.KindMetadata{
		Key:         Key,
		Description: "Python data function stub that converts its input block to a dataframe",
		Language:    scaffold.LanguagePython,
		Stability:   scaffold.StabilityStable,
		Files: []scaffold.FileTemplate{
			{
				Name: "function.py",
				Path: "{{.Name}}/{{.Name}}.py",
				Body: functionTemplate,
			},
		},
		DefaultDirectory:  "functions",
		NameRule:          scaffold.NameRuleIdentifier,
		RequiresNamespace: true,
		GraphNode:         true,
	}
}
