package server

import (
	"errors"
	"io/fs"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/snapgen/snapgen/internal/generator"
	"github.com/snapgen/snapgen/internal/logging"
	"github.com/snapgen/snapgen/internal/scaffold"
	"github.com/snapgen/snapgen/internal/workspace"
)

type renderRequest struct {
	Kind      string `json:"kind"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Directory string `json:"directory"`
}

type renderedFilePayload struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

type renderResponse struct {
	Kind      string                `json:"kind"`
	Namespace string                `json:"namespace,omitempty"`
	Name      string                `json:"name"`
	Directory string                `json:"directory"`
	Files     []renderedFilePayload `json:"files"`
}

// renderHandler 实现 POST /api/render：只渲染、不写盘，结果与 CLI dry-run 一致。
func renderHandler(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		started := time.Now()

		var payload renderRequest
		if err := c.Bind().JSON(&payload); err != nil {
			opts.Metrics.ObserveRender("", resultError, time.Since(started))
			return writeError(c, fiber.StatusBadRequest, "invalid_body")
		}

		meta, rendered, dir, err := opts.Planner.Plan(generator.Request{
			Kind:      payload.Kind,
			Namespace: payload.Namespace,
			Name:      payload.Name,
			Directory: payload.Directory,
		})

		fields := logging.RequestFields(RequestID(c), payload.Kind, payload.Namespace, payload.Name)
		fields["action"] = "render"

		if err != nil {
			status, code := classifyRenderError(err)
			opts.Metrics.ObserveRender(meta.Key, resultError, time.Since(started))
			fields["error"] = err.Error()
			fields["status"] = status
			entry := opts.Logger.WithFields(fields)
			if status >= fiber.StatusInternalServerError {
				entry.Error("render_failed")
			} else {
				entry.Warn("render_rejected")
			}
			return writeError(c, status, code)
		}

		resp := renderResponse{
			Kind:      meta.Key,
			Namespace: rendered.Values.Namespace,
			Name:      rendered.Values.Name,
			Directory: dir,
			Files:     make([]renderedFilePayload, 0, len(rendered.Files)),
		}
		for _, file := range rendered.Files {
			resp.Files = append(resp.Files, renderedFilePayload{
				Path:    workspace.Locator{Dir: dir, Path: file.Path}.RelPath(),
				Content: string(file.Content),
				Mode:    formatMode(file.Mode),
			})
		}

		opts.Metrics.ObserveRender(meta.Key, resultOK, time.Since(started))
		fields["files"] = len(resp.Files)
		opts.Logger.WithFields(fields).Info("render_complete")
		return c.JSON(resp)
	}
}

func classifyRenderError(err error) (int, string) {
	switch {
	case errors.Is(err, scaffold.ErrUnknownKind):
		return fiber.StatusNotFound, "kind_not_found"
	case errors.Is(err, generator.ErrKindDisabled):
		return fiber.StatusForbidden, "kind_disabled"
	case errors.Is(err, scaffold.ErrInvalidName):
		return fiber.StatusBadRequest, "invalid_name"
	case errors.Is(err, scaffold.ErrInvalidNamespace):
		return fiber.StatusBadRequest, "invalid_namespace"
	case errors.Is(err, generator.ErrInvalidDirectory):
		return fiber.StatusBadRequest, "invalid_directory"
	default:
		return fiber.StatusInternalServerError, "render_failed"
	}
}

func formatMode(mode fs.FileMode) string {
	return "0" + strconv.FormatUint(uint64(mode.Perm()), 8)
}
