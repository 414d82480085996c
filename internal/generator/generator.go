// Package generator 串联配置、脚手架渲染、输出目录与 graph.yml 登记，是 generate 命令的核心。
package generator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/snapgen/snapgen/internal/config"
	"github.com/snapgen/snapgen/internal/graph"
	"github.com/snapgen/snapgen/internal/logging"
	"github.com/snapgen/snapgen/internal/scaffold"
	"github.com/snapgen/snapgen/internal/workspace"
)

// GraphAuto 表示从输出根目录向上自动查找 graph.yml。
const GraphAuto = "auto"

// StatusPlanned 标记 dry-run 下未落盘的文件。
const StatusPlanned workspace.WriteStatus = "planned"

var (
	// ErrKindDisabled 表示类型在配置中被禁用。
	ErrKindDisabled = errors.New("scaffold kind disabled")
	// ErrInvalidDirectory 表示请求的输出目录越出输出根目录。
	ErrInvalidDirectory = errors.New("invalid output directory")
)

// Request 描述一次生成请求，空字段按配置回退。
type Request struct {
	Kind      string
	Namespace string
	Name      string
	Directory string
	Force     bool
	DryRun    bool
	// Graph 为空时不登记节点；GraphAuto 自动查找；其余值视为显式图路径。
	Graph string
}

// FileOutcome 记录单个文件的生成结果，Path 相对输出根目录。
type FileOutcome struct {
	Path     string
	FilePath string
	Status   workspace.WriteStatus
	Content  []byte
}

// Result 汇总一次生成。
type Result struct {
	RunID     string
	Kind      string
	Namespace string
	Name      string
	Directory string
	DryRun    bool
	Files     []FileOutcome
	// GraphPath 非空表示本次涉及 graph.yml；GraphNode 为登记（或计划登记）的节点。
	GraphPath  string
	GraphNode  *graph.Node
	GraphAdded bool
}

// Generator 持有一次 CLI 调用或服务生命周期内共享的依赖。
type Generator struct {
	cfg    *config.Config
	store  workspace.Store
	logger *logrus.Logger

	resolve func(string) (scaffold.KindMetadata, bool)
	newID   func() string
}

// Option 调整 Generator 的可替换依赖，主要供测试使用。
type Option func(*Generator)

// WithResolver 替换类型查找函数。
func WithResolver(fn func(string) (scaffold.KindMetadata, bool)) Option {
	return func(g *Generator) {
		if fn != nil {
			g.resolve = fn
		}
	}
}

// WithRunID 替换 run id 生成函数。
func WithRunID(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// New 构造 Generator；cfg 为 nil 时使用内置默认值语义，logger 为 nil 时使用 logrus 标准 logger。
func New(cfg *config.Config, store workspace.Store, logger *logrus.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	g := &Generator{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		resolve: scaffold.Resolve,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Plan 解析请求并渲染文件，但不触碰磁盘。服务端 /api/render 与 dry-run 共用此路径。
// 类型解析成功后，即使后续校验失败也会返回该类型的元数据，供调用方记录指标。
func (g *Generator) Plan(req Request) (scaffold.KindMetadata, *scaffold.Result, string, error) {
	meta, ok := g.resolve(req.Kind)
	if !ok {
		return scaffold.KindMetadata{}, nil, "", fmt.Errorf("%s: %w", req.Kind, scaffold.ErrUnknownKind)
	}
	if !g.cfg.KindEnabled(meta.Key) {
		return meta, nil, "", fmt.Errorf("%s: %w", meta.Key, ErrKindDisabled)
	}

	name := strings.TrimSpace(req.Name)
	values := scaffold.Values{
		Namespace: g.cfg.EffectiveNamespace(meta, req.Namespace, name),
		Name:      name,
	}
	if err := config.ValidateDirectory(req.Directory); err != nil {
		return meta, nil, "", fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, req.Directory, err)
	}
	dir := g.cfg.EffectiveDirectory(meta, req.Directory)

	rendered, err := scaffold.Render(meta, values, scaffold.RenderOptions{TemplateDir: g.templateDir()})
	if err != nil {
		return meta, nil, "", err
	}
	return meta, rendered, dir, nil
}

// Generate 渲染并写入一个脚手架。任一文件失败时回滚本次新建的文件。
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	runID := g.newID()
	started := time.Now()

	meta, rendered, dir, err := g.Plan(req)
	if err != nil {
		g.logFailure(runID, req, err)
		return nil, err
	}

	result := &Result{
		RunID:     runID,
		Kind:      meta.Key,
		Namespace: rendered.Values.Namespace,
		Name:      rendered.Values.Name,
		Directory: dir,
		DryRun:    req.DryRun,
		Files:     make([]FileOutcome, 0, len(rendered.Files)),
	}

	var writes []workspace.WriteResult
	writer := workspace.NewWriter(g.store, req.Force)
	if !req.DryRun && !writer.Enabled() {
		return nil, workspace.ErrStoreUnavailable
	}

	for _, file := range rendered.Files {
		locator := workspace.Locator{Dir: dir, Path: file.Path}
		outcome := FileOutcome{Path: locator.RelPath(), Status: StatusPlanned, Content: file.Content}
		if g.store != nil {
			outcome.FilePath = filepath.Join(g.store.Root(), filepath.FromSlash(locator.RelPath()))
		}
		if !req.DryRun {
			res, err := writer.Write(ctx, locator, file.Content, file.Mode)
			if err != nil {
				g.rollback(ctx, writer, writes, runID)
				g.logFailure(runID, req, err)
				return nil, err
			}
			writes = append(writes, res)
			outcome.FilePath = res.FilePath
			outcome.Status = res.Status
		}
		result.Files = append(result.Files, outcome)
	}

	if req.Graph != "" && meta.GraphNode && len(result.Files) > 0 {
		if err := g.registerNode(req, result); err != nil {
			if !req.DryRun {
				g.rollback(ctx, writer, writes, runID)
			}
			g.logFailure(runID, req, err)
			return nil, err
		}
	}

	fields := logging.RenderFields(runID, meta.Key, result.Namespace, result.Name, req.DryRun)
	fields["action"] = "generate"
	fields["directory"] = dir
	fields["files"] = fileSummaries(result.Files)
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if result.GraphPath != "" {
		fields["graph"] = result.GraphPath
		fields["graph_added"] = result.GraphAdded
	}
	g.logger.WithFields(fields).Info("generate_complete")
	return result, nil
}

// registerNode 将首个生成文件登记为图节点；相同 key 与函数的节点已存在时视为幂等。
func (g *Generator) registerNode(req Request, result *Result) error {
	graphPath, err := g.locateGraph(req.Graph)
	if err != nil {
		return err
	}
	doc, err := graph.Load(graphPath)
	if err != nil {
		return err
	}

	node := graph.Node{
		Key:      result.Name,
		Function: scaffold.Values{Namespace: result.Namespace, Name: result.Name}.Key(),
		File:     nodeFile(graphPath, result.Files[0]),
	}
	result.GraphPath = graphPath
	result.GraphNode = &node

	current, err := doc.Graph()
	if err != nil {
		return err
	}
	for _, existing := range current.Nodes {
		if existing.Key == node.Key && existing.Function == node.Function {
			return nil
		}
	}
	if err := doc.AddNode(node); err != nil {
		return err
	}
	if req.DryRun {
		return nil
	}
	if err := doc.Save(); err != nil {
		return err
	}
	result.GraphAdded = true
	return nil
}

func (g *Generator) locateGraph(target string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(target), GraphAuto) {
		start := ""
		if g.store != nil {
			start = g.store.Root()
		}
		return graph.Find(start)
	}
	return graph.ResolvePath(target, true)
}

// nodeFile 返回相对图文件所在目录的 slash 路径；无法计算时退回输出根目录相对路径。
func nodeFile(graphPath string, file FileOutcome) string {
	if file.FilePath == "" {
		return file.Path
	}
	rel, err := filepath.Rel(filepath.Dir(graphPath), file.FilePath)
	if err != nil {
		return file.Path
	}
	return path.Clean(filepath.ToSlash(rel))
}

func (g *Generator) rollback(ctx context.Context, writer workspace.Writer, writes []workspace.WriteResult, runID string) {
	if len(writes) == 0 {
		return
	}
	if err := writer.Rollback(ctx, writes); err != nil {
		g.logger.WithError(err).WithFields(logrus.Fields{
			"action": "generate_rollback",
			"run_id": runID,
		}).Warn("rollback incomplete")
	}
}

func (g *Generator) logFailure(runID string, req Request, err error) {
	fields := logging.RenderFields(runID, req.Kind, req.Namespace, req.Name, req.DryRun)
	fields["action"] = "generate"
	fields["error"] = err.Error()
	g.logger.WithFields(fields).Error("generate_failed")
}

func (g *Generator) templateDir() string {
	if g.cfg == nil {
		return ""
	}
	return g.cfg.Global.TemplateDir
}

func fileSummaries(files []FileOutcome) []string {
	result := make([]string, len(files))
	for i, file := range files {
		result[i] = fmt.Sprintf("%s:%s", file.Path, file.Status)
	}
	return result
}
