// Package server 提供 snapgen serve 的 Fiber HTTP 服务：请求 ID、中间件链、
// JSON 错误信封、/api/render 渲染接口以及 /-/ 前缀下的诊断端点。
// 服务只渲染不落盘，依赖通过 AppOptions 显式注入，便于测试替换。
package server
