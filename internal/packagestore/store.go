// Package packagestore はタスク定義に登録されたSCORMコンテンツパッケージ (zip) から
// テスト画面のファイルを取り出します。
package packagestore

import (
	"archive/zip"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go_scorm_attempt_keep/internal/model"
)

// Entry はパッケージ内の1ファイル。呼び出し側で Close すること。
type Entry struct {
	io.ReadCloser
	MediaType string
	Size      int64
}

// Store は package_dir 配下の zip を読むストア
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Open は packagePath (base_dir からの相対パス) の zip から relPath のファイルを開きます。
// パッケージやファイルが無ければ model.ErrNotFound。
func (s *Store) Open(packagePath, relPath string) (*Entry, error) {
	zipPath, err := s.resolvePackage(packagePath)
	if err != nil {
		return nil, err
	}
	name, err := cleanEntryName(relPath)
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: package %s", model.ErrNotFound, packagePath)
		}
		return nil, fmt.Errorf("packagestore.Open: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != name || f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("packagestore.Open: %s: %w", name, err)
		}
		return &Entry{
			ReadCloser: &entryReader{ReadCloser: rc, archive: zr},
			MediaType:  mediaType(name),
			Size:       int64(f.UncompressedSize64),
		}, nil
	}

	zr.Close()
	return nil, fmt.Errorf("%w: %s in package %s", model.ErrNotFound, name, packagePath)
}

// resolvePackage はパッケージのパスが base_dir の外を指していないか確認します
func (s *Store) resolvePackage(packagePath string) (string, error) {
	if packagePath == "" {
		return "", fmt.Errorf("%w: package not registered", model.ErrNotFound)
	}
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("packagestore: resolve base dir: %w", err)
	}
	full := filepath.Join(base, filepath.FromSlash(packagePath))
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: package path %q escapes package dir", model.ErrInvalidInput, packagePath)
	}
	return full, nil
}

// cleanEntryName は URL から来た相対パスを zip のエントリ名に正規化します
func cleanEntryName(relPath string) (string, error) {
	name := path.Clean("/" + strings.ReplaceAll(relPath, "\\", "/"))
	name = strings.TrimPrefix(name, "/")
	if name == "" || name == "." {
		return "", fmt.Errorf("%w: empty entry path", model.ErrNotFound)
	}
	return name, nil
}

func mediaType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// entryReader は Close でエントリと zip の両方を閉じる
type entryReader struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (r *entryReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.archive.Close(); err == nil {
		err = cerr
	}
	return err
}
