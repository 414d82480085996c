package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// ErrStoreUnavailable 表示未注入输出存储实例。
var ErrStoreUnavailable = errors.New("workspace store unavailable")

// WriteStatus 描述单个文件的落盘结果。
type WriteStatus string

const (
	StatusCreated     WriteStatus = "created"
	StatusOverwritten WriteStatus = "overwritten"
	StatusUnchanged   WriteStatus = "unchanged"
)

// WriteResult 记录一次写入的目标与结果。
type WriteResult struct {
	Locator  Locator
	FilePath string
	Status   WriteStatus
}

// Writer 在 Store 之上实现覆盖策略：内容一致视为 unchanged，不一致时仅在 force 下覆盖。
type Writer struct {
	store Store
	force bool
}

// NewWriter 构造策略感知的写入器。
func NewWriter(store Store, force bool) Writer {
	return Writer{store: store, force: force}
}

// Enabled 返回当前是否具备写入能力。
func (w Writer) Enabled() bool {
	return w.store != nil
}

// Write 写入一个渲染结果。已存在且逐字节一致的文件不会被重写，保证重复生成幂等。
func (w Writer) Write(ctx context.Context, locator Locator, content []byte, mode fs.FileMode) (WriteResult, error) {
	if w.store == nil {
		return WriteResult{}, ErrStoreUnavailable
	}

	existing, err := w.readExisting(ctx, locator)
	switch {
	case errors.Is(err, ErrNotFound):
		entry, err := w.store.Put(ctx, locator, bytes.NewReader(content), PutOptions{Mode: mode})
		if err != nil {
			return WriteResult{}, err
		}
		return WriteResult{Locator: locator, FilePath: entry.FilePath, Status: StatusCreated}, nil
	case err != nil:
		return WriteResult{}, err
	}

	if bytes.Equal(existing.content, content) {
		return WriteResult{Locator: locator, FilePath: existing.filePath, Status: StatusUnchanged}, nil
	}
	if !w.force {
		return WriteResult{}, fmt.Errorf("%s: %w", locator.RelPath(), ErrExists)
	}

	entry, err := w.store.Put(ctx, locator, bytes.NewReader(content), PutOptions{Mode: mode, Overwrite: true})
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Locator: locator, FilePath: entry.FilePath, Status: StatusOverwritten}, nil
}

// Rollback 删除本次创建的文件；unchanged/overwritten 的文件保持原状。
func (w Writer) Rollback(ctx context.Context, results []WriteResult) error {
	if w.store == nil {
		return ErrStoreUnavailable
	}
	var errs []error
	for _, res := range results {
		if res.Status != StatusCreated {
			continue
		}
		if err := w.store.Remove(ctx, res.Locator); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type existingFile struct {
	filePath string
	content  []byte
}

func (w Writer) readExisting(ctx context.Context, locator Locator) (*existingFile, error) {
	result, err := w.store.Get(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer result.Reader.Close()

	data, err := io.ReadAll(result.Reader)
	if err != nil {
		return nil, err
	}
	return &existingFile{filePath: result.Entry.FilePath, content: data}, nil
}
