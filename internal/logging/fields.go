package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RenderFields 提供类型/命名空间/名称字段，供生成与渲染日志复用。
func RenderFields(runID, kind, namespace, name string, dryRun bool) logrus.Fields {
	return logrus.Fields{
		"run_id":    runID,
		"kind":      kind,
		"namespace": namespace,
		"name":      name,
		"dry_run":   dryRun,
	}
}

// RequestFields 用于 serve 模式下的渲染日志，以 request_id 关联 HTTP 请求。
func RequestFields(requestID, kind, namespace, name string) logrus.Fields {
	return logrus.Fields{
		"request_id": requestID,
		"kind":       kind,
		"namespace":  namespace,
		"name":       name,
	}
}
