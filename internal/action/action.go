// Package action 在检测到变更时执行用户指定的脚本
package action

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/google/shlex"

	"github.com/shuakami/pollwatcher"
)

// Runner 以子进程方式执行 "<prefix> <path> <args>" 并等待其结束
//
// 没有超时：脚本退出后轮询才会继续
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
}

var _ pollwatcher.Action = (*Runner)(nil)

// NewRunner 创建一个输出到当前进程 stdout/stderr 的 Runner
func NewRunner() *Runner {
	return &Runner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Command 按 shell 规则拆分 prefix 与 args，返回完整的 argv
func Command(prefix, path, args string) ([]string, error) {
	if path == "" {
		return nil, errors.New("action path is empty")
	}
	head, err := shlex.Split(prefix)
	if err != nil {
		return nil, fmt.Errorf("invalid prefix %q: %w", prefix, err)
	}
	tail, err := shlex.Split(args)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments %q: %w", args, err)
	}

	argv := make([]string, 0, len(head)+1+len(tail))
	argv = append(argv, head...)
	argv = append(argv, path)
	argv = append(argv, tail...)
	return argv, nil
}

// Run 阻塞直到子进程退出，非零退出码以 *exec.ExitError 返回
func (r *Runner) Run(prefix, path, args string) error {
	argv, err := Command(prefix, path, args)
	if err != nil {
		return err
	}
	slog.Debug("action: running command", "argv", argv)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = append(os.Environ(), r.Env...)
	return cmd.Run()
}
