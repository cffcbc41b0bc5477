package pollwatcher

import "sort"

// ChangeKind 变更类型
type ChangeKind string

const (
	ChangeDeleted  ChangeKind = "deleted"
	ChangeCreated  ChangeKind = "created"
	ChangeModified ChangeKind = "modified"
)

// ChangeSet 是两次快照比较的结果，三个集合互不相交
//
// Deleted：上一次存在、本次不存在的路径
// Created：本次存在、上一次不存在的路径
// Modified：两次都存在但修改时间不同的条目(携带本次的元信息)
type ChangeSet struct {
	Deleted  []string
	Created  []string
	Modified []*FileMetadata
}

// Empty 没有任何变更时返回 true
func (c ChangeSet) Empty() bool {
	return len(c.Deleted) == 0 && len(c.Created) == 0 && len(c.Modified) == 0
}

// Len 返回变更条目总数
func (c ChangeSet) Len() int {
	return len(c.Deleted) + len(c.Created) + len(c.Modified)
}

// Diff 比较 last 与 curr 两个快照
//
// 同一条目以相对路径字符串完全相等为准；修改时间只在两边都存在的路径上比较。
// Deleted 与 Created 按路径排序，Modified 按 curr 中的路径排序。
func Diff(last, curr *Snapshot) ChangeSet {
	var cs ChangeSet
	lastFiles := filesOf(last)
	currFiles := filesOf(curr)

	for p := range lastFiles {
		if _, ok := currFiles[p]; !ok {
			cs.Deleted = append(cs.Deleted, p)
		}
	}

	currPaths := make([]string, 0, len(currFiles))
	for p := range currFiles {
		currPaths = append(currPaths, p)
	}
	sort.Strings(currPaths)

	for _, p := range currPaths {
		meta := currFiles[p]
		prev, ok := lastFiles[p]
		if !ok {
			cs.Created = append(cs.Created, p)
			continue
		}
		if !prev.ModTime.Equal(meta.ModTime) {
			cs.Modified = append(cs.Modified, meta)
		}
	}

	sort.Strings(cs.Deleted)
	return cs
}

func filesOf(s *Snapshot) map[string]*FileMetadata {
	if s == nil {
		return nil
	}
	return s.Files
}
