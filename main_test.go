package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveConfigPathPriority(t *testing.T) {
	t.Setenv(configEnvVar, "/tmp/env.toml")

	opts := &cliOptions{}
	path, explicit := opts.resolveConfigPath()
	if path != "/tmp/env.toml" || !explicit {
		t.Fatalf("应优先使用环境变量，得到 %s", path)
	}

	opts.configFlag = "/tmp/flag.toml"
	if path, _ := opts.resolveConfigPath(); path != "/tmp/flag.toml" {
		t.Fatalf("flag 应高于环境变量，得到 %s", path)
	}

	t.Setenv(configEnvVar, "")
	opts.configFlag = ""
	path, explicit = opts.resolveConfigPath()
	if path != "snapgen.toml" || explicit {
		t.Fatalf("缺省应使用 snapgen.toml，得到 %s (explicit=%v)", path, explicit)
	}
}

func TestRunCheckConfigSuccess(t *testing.T) {
	useBufferWriters(t)
	code := run([]string{"check-config", "--config", configFixture(t, "valid.toml")})
	if code != exitOK {
		t.Fatalf("期望退出码 0，得到 %d (stderr=%s)", code, stdErrBuffer().String())
	}
	if !strings.Contains(stdErrBuffer().String(), "check_config") {
		t.Fatalf("日志应包含 check_config，得到 %s", stdErrBuffer().String())
	}
}

func TestRunCheckConfigFailure(t *testing.T) {
	useBufferWriters(t)
	code := run([]string{"check-config", "--config", configFixture(t, "missing.toml")})
	if code != exitFailure {
		t.Fatalf("无效配置应返回 1，得到 %d", code)
	}
}

func TestRunExplicitConfigMustExist(t *testing.T) {
	useBufferWriters(t)
	t.Setenv(configEnvVar, filepath.Join(t.TempDir(), "absent.toml"))
	if code := run([]string{"check-config"}); code != exitFailure {
		t.Fatalf("显式指定的配置缺失应失败，得到 %d", code)
	}
}

func TestRunVersionOutput(t *testing.T) {
	useBufferWriters(t)
	code := run([]string{"version"})
	if code != exitOK {
		t.Fatalf("version 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "snapgen") {
		t.Fatalf("version 输出应包含 snapgen 标识")
	}
}

func TestRunUsageErrors(t *testing.T) {
	cases := [][]string{
		{"generate", "function"},
		{"generate", "nope", "x"},
		{"list", "extra"},
		{"--unknown-flag"},
		{"frobnicate"},
	}
	for _, args := range cases {
		useBufferWriters(t)
		if code := run(args); code != exitUsage {
			t.Fatalf("%v: 期望退出码 2，得到 %d", args, code)
		}
	}
}

func TestRunGenerateFunction(t *testing.T) {
	useBufferWriters(t)
	root := t.TempDir()
	cfgPath := writeConfigFile(t, `
LogLevel = "warn"
OutputRoot = "`+filepath.ToSlash(root)+`"
DefaultNamespace = "core"
`)

	args := []string{"generate", "function", "dedupe_keep_latest", "--config", cfgPath}
	if code := run(args); code != exitOK {
		t.Fatalf("generate 失败: %d (stderr=%s)", code, stdErrBuffer().String())
	}
	if !strings.Contains(stdOutBuffer().String(), "created") {
		t.Fatalf("stdout 应报告 created，得到 %s", stdOutBuffer().String())
	}

	target := filepath.Join(root, "functions", "dedupe_keep_latest", "dedupe_keep_latest.py")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("读取生成文件失败: %v", err)
	}
	if !strings.Contains(string(data), `namespace="core"`) {
		t.Fatalf("命名空间未替换:\n%s", data)
	}

	useBufferWriters(t)
	if code := run(args); code != exitOK {
		t.Fatalf("重复生成应成功，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "unchanged") {
		t.Fatalf("重复生成应报告 unchanged，得到 %s", stdOutBuffer().String())
	}

	useBufferWriters(t)
	if code := run(append(args, "-n", "other")); code != exitFailure {
		t.Fatalf("内容冲突且未 --force 时应返回 1，得到 %d", code)
	}
	useBufferWriters(t)
	if code := run(append(args, "-n", "other", "--force")); code != exitOK {
		t.Fatalf("--force 应覆盖成功，得到 %d", code)
	}
}

func TestRunGenerateDryRunWithGraph(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeConfigFile(t, `
LogLevel = "warn"
OutputRoot = "`+filepath.ToSlash(root)+`"
`)

	useBufferWriters(t)
	if code := run([]string{"generate", "graph", "pipeline", "--dir", ".", "--config", cfgPath}); code != exitOK {
		t.Fatalf("生成 graph 失败: %d (stderr=%s)", code, stdErrBuffer().String())
	}
	graphPath := filepath.Join(root, "pipeline", "graph.yml")

	useBufferWriters(t)
	code := run([]string{"generate", "function", "clean", "--dry-run", "--graph", graphPath, "--config", cfgPath})
	if code != exitOK {
		t.Fatalf("dry-run 失败: %d (stderr=%s)", code, stdErrBuffer().String())
	}
	out := stdOutBuffer().String()
	if !strings.Contains(out, "planned") || !strings.Contains(out, "def clean(") {
		t.Fatalf("dry-run 应输出计划与正文，得到 %s", out)
	}
	if !strings.Contains(out, "_local.clean") {
		t.Fatalf("dry-run 应展示待登记节点，得到 %s", out)
	}
	if _, err := os.Stat(filepath.Join(root, "functions", "clean")); !os.IsNotExist(err) {
		t.Fatalf("dry-run 不应写入文件")
	}
	data, _ := os.ReadFile(graphPath)
	if strings.Contains(string(data), "clean") {
		t.Fatalf("dry-run 不应修改 graph.yml:\n%s", data)
	}
}

func TestRunList(t *testing.T) {
	useBufferWriters(t)
	code := run([]string{"list", "--config", configFixture(t, "valid.toml")})
	if code != exitOK {
		t.Fatalf("list 失败: %d (stderr=%s)", code, stdErrBuffer().String())
	}
	out := stdOutBuffer().String()
	for _, key := range []string{"function", "sqlfunction", "module", "graph"} {
		if !strings.Contains(out, key) {
			t.Fatalf("list 输出缺少 %s:\n%s", key, out)
		}
	}
	if !strings.Contains(out, "false") {
		t.Fatalf("被禁用的 module 应显示 false:\n%s", out)
	}
}
