// Package scaffold 聚合所有脚手架类型（function/sqlfunction/module/graph），并提供统一的注册与渲染入口。
//
// 新增脚手架类型需要：
//   1. 在 internal/scaffold/<kind>/ 目录下放置模板文件（templates/*.tmpl）并通过 go:embed 引入；
//   2. 在 init() 中调用 MustRegister 注册 KindMetadata；
//   3. 在 internal/config/scaffolds.go 中匿名导入该包，确保 CLI 与服务端都能解析到。
//
// 渲染结果只依赖输入的 Values 与模板文本，同样的输入必须得到逐字节一致的输出。
package scaffold
