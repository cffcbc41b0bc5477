// Package pollwatcher 提供基于轮询的目录变更检测：定期列出目录、与上一次快照比较、报告变更并可选地执行脚本。
//
// 核心特点：
//   - 两种遍历模式：只看顶层(ModeFlat) 或递归整个子树(ModeNested)
//   - 按扩展名过滤：白名单(Include) 与黑名单(Exclude) 二选一，"" 代表目录
//   - 每次轮询生成快照（Snapshot），记录每个条目的修改时间
//   - Diff 将两次快照的差异分为删除、新建、修改三类（ChangeSet）
//   - 检测到变更时同步执行外部脚本，脚本结束后才继续下一轮
//
// 注意：
//   - 只比较修改时间，不计算文件内容哈希
//   - 不使用 inotify/FSEvents 等系统通知，完全依赖轮询
//   - 列出之后、stat 之前消失的条目按"已删除"处理，不会报错
//   - 递归遍历途中消失的子目录同样跳过，只有根目录不存在才报错
//   - 同名目录被删除后又重建，只要路径在两次快照中都存在，就只按修改时间判断是否为"修改"
//
// 推荐使用方式：
//  1. 通过 DefaultConfig 得到 ConfigWatcher 并按需修改
//  2. 通过 NewWatcher 创建 Watcher，注入 Reporter / Action 等协作者
//  3. 调用 Run(ctx) 开始轮询，或在测试中手动调用 Init() 与 Tick()
//
// 并发：
//   - Watcher 不是并发安全的，整个轮询循环运行在调用 Run 的 goroutine 中
//   - 列出目录出错(配置冲突、目录不可读)时 Run 立即返回该错误
package pollwatcher
