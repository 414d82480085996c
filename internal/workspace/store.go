package workspace

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"
)

// Store 负责管理输出目录的读写。磁盘布局遵循：
//
//	<OutputRoot>/<Dir>/<Path>
//
// Dir 为脚手架类型的输出子目录（可为空），Path 为渲染得到的相对路径。
type Store interface {
	// Get 返回一个可流式读取的文件。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, locator Locator) (*ReadResult, error)

	// Put 将内容写入目标文件，并产出新的 Entry 描述。实现需通过临时文件 + rename
	// 保证写入原子性；opts.Overwrite 为 false 且目标已存在时返回 ErrExists。
	Put(ctx context.Context, locator Locator, body io.Reader, opts PutOptions) (*Entry, error)

	// Remove 删除目标文件，用于多文件生成失败时回滚本次创建的文件。
	Remove(ctx context.Context, locator Locator) error

	// Root 返回输出根目录的绝对路径。
	Root() string
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	Mode      fs.FileMode
	Overwrite bool
}

// Locator 唯一定位一个输出文件（类型目录 + 相对路径），均为 slash 风格。
type Locator struct {
	Dir  string
	Path string
}

// RelPath 返回相对输出根目录的 slash 路径。
func (l Locator) RelPath() string {
	if l.Dir == "" {
		return l.Path
	}
	return l.Dir + "/" + l.Path
}

// Entry 表示一个已落盘的文件，包含绝对路径及文件信息。
type Entry struct {
	Locator   Locator     `json:"locator"`
	FilePath  string      `json:"file_path"`
	SizeBytes int64       `json:"size_bytes"`
	Mode      fs.FileMode `json:"mode"`
	ModTime   time.Time
}

// ReadResult 组合 Entry 与正文 Reader。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadSeekCloser
}

var (
	// ErrNotFound 表示目标文件不存在。
	ErrNotFound = errors.New("workspace file not found")
	// ErrExists 表示目标文件已存在且内容不同，需要 --force 才能覆盖。
	ErrExists = errors.New("workspace file already exists")
)
