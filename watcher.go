package pollwatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Reporter 负责把轮询结果展示给用户
//
// Separator：输出带时间戳的分隔线
// Report：输出一次变更集合(复数形式、分组方式由实现决定)
// Invoking：在执行脚本前输出调用语句
type Reporter interface {
	Separator(t time.Time)
	Report(root string, cs ChangeSet)
	Invoking(command string)
}

// Action 在检测到变更时同步执行外部脚本，返回前必须等待其结束
type Action interface {
	Run(prefix, path, args string) error
}

// ConfigSource 提供运行期间的配置更新，每次轮询前检查一次
//
// changed=false 表示配置没有变化
type ConfigSource interface {
	Changed() (cfg ConfigWatcher, changed bool, err error)
}

// Option 用于为 Watcher 注入协作者
type Option func(*Watcher)

// WithReporter 设置变更输出
func WithReporter(r Reporter) Option {
	return func(w *Watcher) { w.reporter = r }
}

// WithAction 设置变更时执行的脚本调用器
func WithAction(a Action) Option {
	return func(w *Watcher) { w.action = a }
}

// WithLogger 设置日志
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithMetrics 设置 Prometheus 指标
func WithMetrics(m *Metrics) Option {
	return func(w *Watcher) { w.metrics = m }
}

// WithConfigSource 设置配置热更新来源
func WithConfigSource(s ConfigSource) Option {
	return func(w *Watcher) { w.source = s }
}

// Watcher 负责"轮询 → diff → 报告 → 执行脚本 → 轮换快照"的循环
//
// 整个循环在调用 Run 的 goroutine 中同步执行，last 只由循环自身读写，因此不需要加锁。
// 执行脚本时循环阻塞，脚本运行期间目录的中间状态不会被观察到。
type Watcher struct {
	cfg      ConfigWatcher
	reporter Reporter
	action   Action
	source   ConfigSource
	logger   *slog.Logger
	metrics  *Metrics

	last *Snapshot
}

// NewWatcher 根据给定配置创建一个新的 Watcher
//
// 若 cfg.Interval <= 0，则默认使用 500ms
// 过滤规则冲突时返回 ErrConflictingFilters
func NewWatcher(cfg ConfigWatcher, opts ...Option) (*Watcher, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:      cfg,
		reporter: nopReporter{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.action == nil && cfg.ActionPath != "" {
		return nil, fmt.Errorf("action path %s configured without an action runner", cfg.ActionPath)
	}
	return w, nil
}

// Config 返回当前生效的配置
func (w *Watcher) Config() ConfigWatcher {
	return w.cfg
}

// Last 返回最近一次轮换后的快照
func (w *Watcher) Last() *Snapshot {
	return w.last
}

// Init 采集初始快照并输出一条分隔线
func (w *Watcher) Init() error {
	snap, err := w.capture()
	if err != nil {
		return err
	}
	w.watch(snap)
	return nil
}

// watch 以 snap 作为新的基准快照
func (w *Watcher) watch(snap *Snapshot) {
	w.last = snap
	w.logger.Info("Watching directory",
		"root", w.cfg.Root,
		"mode", w.cfg.Mode.String(),
		"interval", w.cfg.Interval,
		"snapshot", snap.ID,
		"entries", snap.Len(),
	)
	w.reporter.Separator(time.Now())
}

// Run 初始化后无限轮询，直到出错或 ctx 被取消
//
// 列出目录失败(配置错误、IO 错误)会直接结束循环并返回该错误；
// 脚本执行失败只记录日志，不影响后续轮询。
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Init(); err != nil {
		return err
	}
	for {
		if err := w.sleep(ctx); err != nil {
			return err
		}
		if _, err := w.Tick(); err != nil {
			return err
		}
	}
}

// Tick 执行一次轮询，返回本次检测到的变更集合
//
// 变更处理完之后重新采集一次快照作为下一轮的基准，
// 因此脚本自身对目录造成的修改不会再次触发脚本。
func (w *Watcher) Tick() (ChangeSet, error) {
	w.reload()
	if w.last == nil {
		if err := w.Init(); err != nil {
			return ChangeSet{}, err
		}
	}

	start := time.Now()
	curr, err := w.capture()
	if err != nil {
		return ChangeSet{}, err
	}
	cs := Diff(w.last, curr)
	w.metrics.observePoll(time.Since(start).Seconds())

	if !cs.Empty() {
		w.metrics.observeChanges(cs)
		w.logger.Debug("Changes detected",
			"last", w.last.ID,
			"current", curr.ID,
			"since", curr.CreatedAt.Sub(w.last.CreatedAt),
			"deleted", len(cs.Deleted),
			"created", len(cs.Created),
			"modified", len(cs.Modified),
		)
		w.handle(cs)
	}

	next, err := w.capture()
	if err != nil {
		return cs, err
	}
	if !cs.Empty() {
		w.logger.Debug("Baseline rotated", "from", w.last.ID, "to", next.ID)
	}
	w.last = next
	return cs, nil
}

// handle 输出变更并执行脚本
func (w *Watcher) handle(cs ChangeSet) {
	if w.cfg.Report {
		w.reporter.Report(w.cfg.Root, cs)
	}
	w.reporter.Separator(time.Now())

	if w.cfg.ActionPath == "" {
		return
	}
	w.reporter.Invoking(w.cfg.ActionCommand())
	err := w.action.Run(w.cfg.Prefix, w.cfg.ActionPath, w.cfg.ActionArgs)
	w.metrics.observeAction(err)
	if err != nil {
		w.logger.Warn("Action failed", "command", w.cfg.ActionCommand(), "error", err)
	}
	w.reporter.Separator(time.Now())
}

// reload 检查配置来源，配置变化时采用新配置并重新建立基准快照
//
// 新配置不可用(校验失败或新目录无法列出)时保留旧配置与旧基准继续运行
func (w *Watcher) reload() {
	if w.source == nil {
		return
	}
	cfg, changed, err := w.source.Changed()
	if err != nil {
		w.logger.Error("Failed to reload configuration", "error", err)
		return
	}
	if !changed {
		return
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Error("Ignoring invalid configuration", "error", err)
		return
	}
	if cfg.ActionPath != "" && w.action == nil {
		w.logger.Error("Ignoring configuration with action but no runner", "action", cfg.ActionPath)
		return
	}

	snap, err := TakeSnapshot(cfg.Root, cfg.Mode, cfg.Filter)
	if err != nil {
		w.logger.Error("Ignoring configuration, watch directory unavailable", "root", cfg.Root, "error", err)
		return
	}

	w.cfg = cfg
	w.logger.Info("Configuration reloaded", "root", cfg.Root, "mode", cfg.Mode.String())
	w.watch(snap)
}

func (w *Watcher) capture() (*Snapshot, error) {
	return TakeSnapshot(w.cfg.Root, w.cfg.Mode, w.cfg.Filter)
}

func (w *Watcher) sleep(ctx context.Context) error {
	t := time.NewTimer(w.cfg.Interval)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopReporter struct{}

func (nopReporter) Separator(time.Time)      {}
func (nopReporter) Report(string, ChangeSet) {}
func (nopReporter) Invoking(string)          {}
