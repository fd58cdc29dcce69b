// Package local 本地文件系统图片存储
//
// 文件名由存储生成(uuid+小写扩展名),上传时的原始文件名只作为展示信息返回,
// 不参与路径拼接,因此不存在路径穿越与同名覆盖问题。
// 目录通过gin的Static挂载到URLPrefix下对外提供访问。
package local

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// 只保留形如 .png / .jpeg 的扩展名
var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// ImageStore 文件系统图片存储
type ImageStore struct {
	dir       string
	urlPrefix string
}

// NewImageStore 创建图片存储,目录不存在时自动创建
func NewImageStore(dir, urlPrefix string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建图片目录失败: %w", err)
	}
	return &ImageStore{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

// Dir 图片目录(用于静态文件挂载)
func (s *ImageStore) Dir() string { return s.dir }

// URLPrefix 静态挂载路径
func (s *ImageStore) URLPrefix() string { return s.urlPrefix }

// Save 保存图片
// 1. 生成存储键
// 2. 先写临时文件,完整写入后再rename,避免读到半个文件
// 3. 嗅探Content-Type
func (s *ImageStore) Save(ctx context.Context, filename string, r io.Reader) (*book.StoredImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := uuid.NewString() + normalizeExt(filename)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	br := bufio.NewReaderSize(r, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)

	size, err := io.Copy(tmp, br)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("写入图片失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("写入图片失败: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, key)); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("保存图片失败: %w", err)
	}

	metrics.IncCounter(metrics.ImagesStoredTotal)
	metrics.AddCounter(metrics.ImageBytesStored, float64(size))

	return &book.StoredImage{
		Key:         key,
		Filename:    displayName(filename),
		Size:        size,
		ContentType: contentType,
	}, nil
}

// Delete 删除图片,文件不存在视为成功
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("非法的图片键: %q", key)
	}

	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除图片失败: %w", err)
	}
	return nil
}

// URL 拼接绝对地址:baseURL + URLPrefix + "/" + key
func (s *ImageStore) URL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + s.urlPrefix + "/" + key
}

func displayName(filename string) string {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func normalizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}
