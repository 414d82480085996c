// Package graph 负责定位与编辑项目根目录下的 graph.yml。
package graph

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxParentLookup 限制 Find 向上查找的层级。
const maxParentLookup = 100

// FileNames 为按优先级排列的图文件名。
var FileNames = []string{"graph.yml", "graph.yaml"}

var (
	// ErrNotFound 表示在查找范围内没有图文件。
	ErrNotFound = errors.New("graph file not found")
	// ErrExists 表示创建新图时目标已存在。
	ErrExists = errors.New("graph file already exists")
	// ErrNotYAML 表示显式给出的路径不是 yaml 文件。
	ErrNotYAML = errors.New("graph file must be yaml")
)

// ResolvePath 将显式给出的图位置解析为 yaml 文件的绝对路径。
// exists 为 true 时要求文件已存在；为 false 时要求文件尚不存在，
// 且无后缀的路径会被当作目录创建并返回其中的 graph.yml。
func ResolvePath(path string, exists bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("graph path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, statErr := os.Stat(abs)
	if statErr == nil && info.IsDir() {
		for _, name := range FileNames {
			candidate := filepath.Join(abs, name)
			if isFile(candidate) {
				if exists {
					return candidate, nil
				}
				return "", fmt.Errorf("%s: %w", candidate, ErrExists)
			}
		}
		candidate := filepath.Join(abs, FileNames[0])
		if exists {
			return "", fmt.Errorf("%s: %w", candidate, ErrNotFound)
		}
		return candidate, nil
	}
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return "", statErr
	}

	ext := filepath.Ext(abs)
	if ext != "" && ext != ".yml" && ext != ".yaml" {
		return "", fmt.Errorf("%s: %w", path, ErrNotYAML)
	}
	if statErr == nil {
		if !exists {
			return "", fmt.Errorf("%s: %w", abs, ErrExists)
		}
		return abs, nil
	}
	if exists {
		return "", fmt.Errorf("%s: %w", abs, ErrNotFound)
	}
	if ext != "" {
		return abs, nil
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create graph directory: %w", err)
	}
	return filepath.Join(abs, FileNames[0]), nil
}

// Find 从 start 开始逐级向上查找 graph.yml / graph.yaml。
// start 指向文件时直接按已存在的图解析；为空时从当前工作目录开始。
func Find(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		start = wd
	}
	if isFile(start) {
		return ResolvePath(start, true)
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for i := 0; i < maxParentLookup; i++ {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if isFile(candidate) {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s: %w", start, ErrNotFound)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
