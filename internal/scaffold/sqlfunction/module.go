// Package sqlfunction 注册 SQL 数据函数脚手架：<name>/<name>.sql。
package sqlfunction

import (
	_ "embed"

	"github.com/snapgen/snapgen/internal/scaffold"
)

//go:embed templates/function.sql.tmpl
var sqlTemplate string

const Key = "sqlfunction"

func init() {
	scaffold.MustRegister(Metadata())
}

// Metadata 返回 sqlfunction 类型的元数据。
func Metadata() scaffold.KindMetadata {
	return scaffold.KindMetadata{
		Key:         Key,
		Description: "SQL data function stub selecting from its input block",
		Language:    scaffold.LanguageSQL,
		Stability:   scaffold.StabilityExperimental,
		Files: []scaffold.FileTemplate{
			{
				Name: "function.sql",
				Path: "{{.Name}}/{{.Name}}.sql",
				Body: sqlTemplate,
			},
		},
		DefaultDirectory:  "functions",
		NameRule:          scaffold.NameRuleIdentifier,
		RequiresNamespace: true,
		GraphNode:         true,
	}
}
