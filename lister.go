package pollwatcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// ErrConflictingFilters 表示同时设置了包含扩展名和排除扩展名(配置错误)
var ErrConflictingFilters = errors.New("cannot specify both included and excluded extensions")

// DirSentinel 是目录的"扩展名"标记，仅在递归模式下有意义
const DirSentinel = ""

// Mode 遍历模式
type Mode int

const (
	// ModeFlat 只列出根目录下的直接子项
	ModeFlat Mode = iota
	// ModeNested 递归列出整个子树
	ModeNested
)

// String 返回模式名称
func (m Mode) String() string {
	switch m {
	case ModeFlat:
		return "flat"
	case ModeNested:
		return "nested"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Filter 描述扩展名过滤规则
//
// Include：白名单，只保留扩展名在其中的条目
// Exclude：黑名单，去掉扩展名在其中的条目
// 两者最多只能设置一个；"" 表示目录(见 DirSentinel)
type Filter struct {
	Include []string
	Exclude []string
}

// Validate 检查过滤规则是否互斥
func (f Filter) Validate() error {
	if len(f.Include) > 0 && len(f.Exclude) > 0 {
		return fmt.Errorf("invalid filter (include %q, exclude %q): %w", f.Include, f.Exclude, ErrConflictingFilters)
	}
	return nil
}

// accepts 按扩展名判断条目是否保留
func (f Filter) accepts(ext string) bool {
	switch {
	case len(f.Include) > 0:
		return slices.Contains(f.Include, ext)
	case len(f.Exclude) > 0:
		return !slices.Contains(f.Exclude, ext)
	default:
		return true
	}
}

// acceptsDir 目录规则：白名单需包含 ""，黑名单不能包含 ""
func (f Filter) acceptsDir() bool {
	return f.accepts(DirSentinel)
}

// Ext 返回名称中最后一个 "." 之后的部分(含 ".")，没有 "." 时返回 ""
func Ext(name string) string {
	return filepath.Ext(filepath.Base(name))
}

// List 按模式列出 root 下满足过滤规则的相对路径
func List(root string, mode Mode, filter Filter) ([]string, error) {
	if mode == ModeNested {
		return ListNested(root, filter)
	}
	return ListTopLevel(root, filter)
}

// ListTopLevel 只列出 root 的直接子项(文件和目录都算)
//
// 目录与文件一视同仁，按各自名称的扩展名过滤，不使用目录标记规则
func ListTopLevel(root string, filter Filter) ([]string, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", root, err)
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if filter.accepts(Ext(e.Name())) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// ListNested 递归遍历 root 的整个子树
//
// 每个非根目录本身作为一个条目，是否保留由目录标记规则决定；
// 文件以 "相对目录/文件名" 的形式输出，按文件扩展名过滤。
// 指向目录的符号链接当作目录条目处理，但不会进入其中。
func ListNested(root string, filter Filter) ([]string, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var out []string
	err := filepath.WalkDir(root, nestedVisitor(root, filter, &out))
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}
	return out, nil
}

// nestedVisitor 返回 ListNested 使用的 WalkDir 回调，保留的条目追加到 out
//
// 列出父目录之后才消失的子目录直接跳过，在 diff 中表现为"删除"；根目录本身出错仍然返回错误。
func nestedVisitor(root string, filter Filter, out *[]string) fs.WalkDirFunc {
	return func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p != root {
				return nil
			}
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		isDir := d.IsDir()
		if !isDir && d.Type()&fs.ModeSymlink != 0 {
			if fi, statErr := os.Stat(p); statErr == nil && fi.IsDir() {
				isDir = true
			}
		}

		if isDir {
			if filter.acceptsDir() {
				*out = append(*out, rel)
			}
			return nil
		}
		if filter.accepts(Ext(d.Name())) {
			*out = append(*out, rel)
		}
		return nil
	}
}

// joinRoot 把以 "/" 分隔的相对路径还原为 root 下的系统路径
func joinRoot(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
