// Package module 注册模块脚手架：声明命名空间的 <name>/__init__.py 以及空的 functions 包。
package module

import (
	_ "embed"

	"github.com/snapgen/snapgen/internal/scaffold"
)

var (
	//go:embed templates/init.py.tmpl
	initTemplate string

	//go:embed templates/functions_init.py.tmpl
	functionsInitTemplate string
)

const Key = "module"

func init() {
	scaffold.MustRegister(Metadata())
}

// Metadata 返回 module 类型的元数据。未指定命名空间时沿用模块名。
func Metadata() scaffold.KindMetadata {
	return scaffold.KindMetadata{
		Key:         Key,
		Description: "Python package declaring a module namespace with an empty functions package",
		Language:    scaffold.LanguagePython,
		Stability:   scaffold.StabilityStable,
		Files: []scaffold.FileTemplate{
			{
				Name: "__init__.py",
				Path: "{{.Name}}/__init__.py",
				Body: initTemplate,
			},
			{
				Name: "functions__init__.py",
				Path: "{{.Name}}/functions/__init__.py",
				Body: functionsInitTemplate,
			},
		},
		NameRule:          scaffold.NameRuleIdentifier,
		RequiresNamespace: true,
		NamespaceFromName: true,
	}
}
