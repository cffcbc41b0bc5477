package pollwatcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

const (
	// DefaultInterval 默认轮询间隔
	DefaultInterval = 500 * time.Millisecond
	// DefaultPrefix 默认的脚本调用前缀
	DefaultPrefix = "py"
)

// ConfigWatcher 用于配置 Watcher
//
// Root：要监控的目录
// ActionPath：检测到变更时执行的脚本，为空表示只报告不执行
// Mode：遍历模式(ModeFlat / ModeNested)
// Filter：扩展名过滤规则
// Interval：两次轮询之间的间隔, 默认 500ms
// Report：是否输出变更信息
// ActionArgs：原样追加在脚本调用后面的参数串
// Prefix：脚本调用前缀(解释器), 默认 "py"
type ConfigWatcher struct {
	Root       string        // 监控目录
	ActionPath string        // 脚本路径，为空不执行
	Mode       Mode          // 遍历模式
	Filter     Filter        // 扩展名过滤
	Interval   time.Duration // 轮询间隔
	Report     bool          // 是否输出变更
	ActionArgs string        // 脚本参数
	Prefix     string        // 调用前缀
}

// DefaultConfig 返回带默认值的配置，监控目录为 root
func DefaultConfig(root string) ConfigWatcher {
	return ConfigWatcher{
		Root:     root,
		Mode:     ModeFlat,
		Interval: DefaultInterval,
		Report:   true,
		Prefix:   DefaultPrefix,
	}
}

// Normalize 将相对路径的 Root 与 ActionPath 解析为绝对路径(相对于当前工作目录)
func (c *ConfigWatcher) Normalize() error {
	if c.Root == "" {
		c.Root = "."
	}
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve watch directory %s: %w", c.Root, err)
	}
	c.Root = root

	if c.ActionPath != "" {
		action, err := filepath.Abs(c.ActionPath)
		if err != nil {
			return fmt.Errorf("failed to resolve action path %s: %w", c.ActionPath, err)
		}
		c.ActionPath = action
	}
	return nil
}

// Validate 检查配置是否可用
func (c ConfigWatcher) Validate() error {
	if c.Root == "" {
		return errors.New("watch directory is required")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	return c.Filter.Validate()
}

// ActionCommand 返回用于展示的脚本调用语句
func (c ConfigWatcher) ActionCommand() string {
	return fmt.Sprintf("%s %s %s", c.Prefix, c.ActionPath, c.ActionArgs)
}
