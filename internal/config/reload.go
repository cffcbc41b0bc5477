package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/shuakami/pollwatcher"
)

// Reloader 使用 fsnotify 监听配置文件，文件被写入时向 Watcher 提供新配置
//
// Watcher 每轮轮询调用一次 Changed，事件在其中以非阻塞方式取出，轮询循环仍是单线程的
type Reloader struct {
	path    string
	fsw     *fsnotify.Watcher
	overlay func(*File)
}

var _ pollwatcher.ConfigSource = (*Reloader)(nil)

// NewReloader 开始监听 path
//
// overlay 不为 nil 时作用于每次重新读取的配置，保证命令行参数优先
func NewReloader(path string, overlay func(*File)) (*Reloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	// 编辑器常常以替换的方式保存文件，所以监听父目录并按文件名匹配事件
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	return &Reloader{path: abs, fsw: fsw, overlay: overlay}, nil
}

// Changed 返回自上次调用以来文件是否被写入，若是则返回重新读取的配置
func (r *Reloader) Changed() (pollwatcher.ConfigWatcher, bool, error) {
	if !r.drain() {
		return pollwatcher.ConfigWatcher{}, false, nil
	}
	slog.Debug("Configuration file changed", "path", r.path)

	f, err := Load(r.path)
	if err != nil {
		return pollwatcher.ConfigWatcher{}, false, err
	}
	if r.overlay != nil {
		r.overlay(f)
		if err := f.Validate(); err != nil {
			return pollwatcher.ConfigWatcher{}, false, err
		}
	}
	cfg, err := f.Watcher()
	if err != nil {
		return pollwatcher.ConfigWatcher{}, false, err
	}
	return cfg, true, nil
}

// Close 停止监听
func (r *Reloader) Close() error {
	return r.fsw.Close()
}

func (r *Reloader) drain() bool {
	changed := false
	for {
		select {
		case ev, ok := <-r.fsw.Events:
			if !ok {
				return changed
			}
			if filepath.Clean(ev.Name) != r.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				changed = true
			}
		case err, ok := <-r.fsw.Errors:
			if !ok {
				return changed
			}
			slog.Warn("Configuration watcher error", "error", err)
		default:
			return changed
		}
	}
}
