// Package report 将轮询结果输出为可读文本
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/shuakami/pollwatcher"
)

// TimeFormat 分隔线后面的时间戳格式
const TimeFormat = "2006-01-02 15:04:05.000000"

const separatorWidth = 60

// Printer 将变更信息写入 io.Writer
//
// 只有输出是支持颜色的终端时才带颜色
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	separator lipgloss.Style
	deleted   lipgloss.Style
	created   lipgloss.Style
	modified  lipgloss.Style
	command   lipgloss.Style
}

// NewPrinter 创建写入 out 的 Printer
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:       out,
		separator: r.NewStyle().Faint(true),
		deleted:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		created:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		modified:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		command:   r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

var _ pollwatcher.Reporter = (*Printer)(nil)

// Separator 输出一行短横线，后接时间 t
func (p *Printer) Separator(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line := strings.Repeat("-", separatorWidth) + t.Format(TimeFormat)
	fmt.Fprintln(p.out, p.separator.Render(line))
}

// Report 依次输出删除、新建、修改三组，空组不输出；路径显示为 root 下的完整路径
func (p *Printer) Report(root string, cs pollwatcher.ChangeSet) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.group(p.deleted, "Lost", root, cs.Deleted)
	p.group(p.created, "New", root, cs.Created)

	modified := make([]string, 0, len(cs.Modified))
	for _, m := range cs.Modified {
		modified = append(modified, m.Path)
	}
	p.group(p.modified, "Modified", root, modified)
}

// Invoking 输出即将执行的命令
func (p *Printer) Invoking(command string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.command.Render(" * "+command))
}

func (p *Printer) group(style lipgloss.Style, label, root string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(p.out, style.Render(Heading(label, len(paths))))
	for _, rel := range paths {
		fmt.Fprintf(p.out, " - %s\n", filepath.Join(root, filepath.FromSlash(rel)))
	}
}

// Heading 按数量返回 "<label> file:" 或 "<label> files:"
func Heading(label string, n int) string {
	if n < 2 {
		return label + " file:"
	}
	return label + " files:"
}
