package pollwatcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
)

// Snapshot 表示某一次轮询时刻目录的状态
//
// ID 是此快照的唯一标识(UUID)
// Root 是被监控的根目录
// CreatedAt 表示快照采集时间
// Files 以相对路径为键，存储每个条目的元信息
type Snapshot struct {
	ID        string                   // 唯一ID (UUID)
	Root      string                   // 根目录
	CreatedAt time.Time                // 采集时间
	Files     map[string]*FileMetadata // 相对路径 -> 元信息
}

// FileMetadata 表示单个条目在某个快照中的信息
//
// Path：相对于根目录的路径(以 "/" 分隔)
// Size：文件大小（单位：字节）
// ModTime：文件上次修改时间
// IsDirectory：是否为目录
type FileMetadata struct {
	Path        string    // 相对路径
	Size        int64     // 大小(字节)
	ModTime     time.Time // 修改时间
	IsDirectory bool      // 是否目录
}

// TakeSnapshot 列出 root 下的条目并读取每个条目的修改时间
//
// 列出和 stat 在同一次调用中完成；列出之后、stat 之前消失的条目直接跳过，
// 在 diff 中表现为"删除"，而不是报错。
func TakeSnapshot(root string, mode Mode, filter Filter) (*Snapshot, error) {
	paths, err := List(root, mode, filter)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		Root:      root,
		CreatedAt: time.Now(),
		Files:     make(map[string]*FileMetadata, len(paths)),
	}
	for _, rel := range paths {
		fi, err := os.Stat(joinRoot(root, rel))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", rel, err)
		}
		snap.Files[rel] = &FileMetadata{
			Path:        rel,
			Size:        fi.Size(),
			ModTime:     fi.ModTime(),
			IsDirectory: fi.IsDir(),
		}
	}
	return snap, nil
}

// Paths 返回快照中的全部相对路径(无序)
func (s *Snapshot) Paths() []string {
	out := make([]string, 0, len(s.Files))
	for p := range s.Files {
		out = append(out, p)
	}
	return out
}

// Len 返回条目数量
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Files)
}
