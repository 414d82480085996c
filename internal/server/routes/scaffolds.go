package routes

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/snapgen/snapgen/internal/config"
	"github.com/snapgen/snapgen/internal/scaffold"
)

// RegisterScaffoldRoutes 暴露 /-/scaffolds 诊断接口，列出已注册类型及其在当前配置下的生效参数。
func RegisterScaffoldRoutes(app *fiber.App, cfg *config.Config) {
	if app == nil {
		return
	}

	app.Get("/-/scaffolds", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"scaffolds": encodeScaffolds(scaffold.List(), cfg),
		})
	})

	app.Get("/-/scaffolds/:key", func(c fiber.Ctx) error {
		key := strings.ToLower(strings.TrimSpace(c.Params("key")))
		if key == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kind_key_required"})
		}
		meta, ok := scaffold.Resolve(key)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "kind_not_found"})
		}
		return c.JSON(encodeScaffold(meta, cfg))
	})
}

type scaffoldPayload struct {
	Key               string             `json:"key"`
	Description       string             `json:"description"`
	Language          scaffold.Language  `json:"language"`
	Stability         scaffold.Stability `json:"stability"`
	NameRule          scaffold.NameRule  `json:"name_rule"`
	RequiresNamespace bool               `json:"requires_namespace"`
	GraphNode         bool               `json:"graph_node"`
	Enabled           bool               `json:"enabled"`
	Directory         string             `json:"directory"`
	Namespace         string             `json:"namespace,omitempty"`
	Files             []filePayload      `json:"files"`
}

type filePayload struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func encodeScaffolds(kinds []scaffold.KindMetadata, cfg *config.Config) []scaffoldPayload {
	if len(kinds) == 0 {
		return nil
	}
	result := make([]scaffoldPayload, 0, len(kinds))
	for _, meta := range kinds {
		result = append(result, encodeScaffold(meta, cfg))
	}
	return result
}

// encodeScaffold 中的 namespace 为未指定名称时的回退值，NamespaceFromName 类型不展示。
func encodeScaffold(meta scaffold.KindMetadata, cfg *config.Config) scaffoldPayload {
	payload := scaffoldPayload{
		Key:               meta.Key,
		Description:       meta.Description,
		Language:          meta.Language,
		Stability:         meta.Stability,
		NameRule:          meta.NameRule,
		RequiresNamespace: meta.RequiresNamespace,
		GraphNode:         meta.GraphNode,
		Enabled:           cfg.KindEnabled(meta.Key),
		Directory:         cfg.EffectiveDirectory(meta, ""),
		Files:             make([]filePayload, 0, len(meta.Files)),
	}
	if meta.RequiresNamespace && !meta.NamespaceFromName {
		payload.Namespace = cfg.EffectiveNamespace(meta, "", "")
	}
	for _, file := range meta.Files {
		payload.Files = append(payload.Files, filePayload{Name: file.Name, Path: file.Path})
	}
	return payload
}
