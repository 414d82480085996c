package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snapgen/snapgen/internal/generator"
	"github.com/snapgen/snapgen/internal/scaffold"
	"github.com/snapgen/snapgen/internal/workspace"
)

type generateOptions struct {
	namespace string
	directory string
	root      string
	graph     string
	force     bool
	dryRun    bool
}

func newGenerateCmd(opts *cliOptions) *cobra.Command {
	gen := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <kind> <name>",
		Short: "Render a scaffold into the output directory",
		Long: "Render a registered scaffold kind (" + strings.Join(scaffold.Keys(), ", ") + ") " +
			"with the given name. Existing files with different content are only replaced with --force.",
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, gen, args[0], args[1])
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&gen.namespace, "namespace", "n", "", "函数命名空间（缺省取 [[Kind]].Namespace 或 DefaultNamespace）")
	flags.StringVar(&gen.directory, "dir", "", "相对输出根目录的子目录（缺省取 [[Kind]].Directory 或类型默认值）")
	flags.StringVar(&gen.root, "root", "", "覆盖配置中的 OutputRoot")
	flags.StringVar(&gen.graph, "graph", "", "登记到 graph.yml：显式路径，或 auto 自动向上查找")
	flags.BoolVar(&gen.force, "force", false, "覆盖内容不同的已存在文件")
	flags.BoolVar(&gen.dryRun, "dry-run", false, "只输出渲染结果，不写入磁盘")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *cliOptions, gen *generateOptions, kind, name string) error {
	if _, ok := scaffold.Resolve(kind); !ok {
		return newUsageError("未知脚手架类型 %q，可选: %s", kind, strings.Join(scaffold.Keys(), "|"))
	}

	cfg, logger, _, err := opts.loadRuntime()
	if err != nil {
		return err
	}

	root := cfg.Global.OutputRoot
	if gen.root != "" {
		root = gen.root
	}
	store, err := workspace.NewStore(root)
	if err != nil {
		return fmt.Errorf("初始化输出目录失败: %w", err)
	}

	result, err := generator.New(cfg, store, logger).Generate(cmd.Context(), generator.Request{
		Kind:      kind,
		Namespace: gen.namespace,
		Name:      name,
		Directory: gen.directory,
		Force:     gen.force,
		DryRun:    gen.dryRun,
		Graph:     gen.graph,
	})
	if err != nil {
		return err
	}

	printGenerateResult(result)
	return nil
}

// printGenerateResult 在 stdout 输出每个文件的状态；dry-run 时附带文件正文。
func printGenerateResult(result *generator.Result) {
	for _, file := range result.Files {
		fmt.Fprintf(stdOut, "%-11s %s\n", file.Status, file.Path)
		if result.DryRun {
			fmt.Fprint(stdOut, string(file.Content))
			if len(file.Content) > 0 && file.Content[len(file.Content)-1] != '\n' {
				fmt.Fprintln(stdOut)
			}
		}
	}
	if result.GraphNode == nil {
		return
	}
	status := "unchanged"
	switch {
	case result.GraphAdded:
		status = "added"
	case result.DryRun:
		status = string(generator.StatusPlanned)
	}
	fmt.Fprintf(stdOut, "%-11s %s (node %s -> %s)\n", status, result.GraphPath, result.GraphNode.Key, result.GraphNode.Function)
}
