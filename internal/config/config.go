package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/shuakami/pollwatcher"
)

// File 对应 YAML 配置文件，每一项都可以被命令行参数覆盖
type File struct {
	Root     string   `yaml:"root"`
	Action   string   `yaml:"action"`
	Nested   bool     `yaml:"nested"`
	Include  []string `yaml:"include"`
	Exclude  []string `yaml:"exclude"`
	Interval float64  `yaml:"interval" validate:"gt=0"` // 秒
	Report   bool     `yaml:"report"`
	Args     string   `yaml:"args"`
	Prefix   string   `yaml:"prefix"`
	Logger   Logger   `yaml:"logger"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Logger 日志配置
type Logger struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
}

// Metrics Prometheus 端点配置
type Metrics struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
}

// Default 返回未指定配置文件时使用的默认配置
func Default() *File {
	return &File{
		Root:     ".",
		Interval: pollwatcher.DefaultInterval.Seconds(),
		Report:   true,
		Prefix:   pollwatcher.DefaultPrefix,
		Logger: Logger{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load 在默认配置之上读取 YAML 文件并校验
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 先检查过滤规则是否互斥，再按 validate 标签校验
func (f *File) Validate() error {
	if err := f.filter().Validate(); err != nil {
		return err
	}
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Watcher 转换为 pollwatcher.ConfigWatcher，相对路径按当前工作目录解析
func (f *File) Watcher() (pollwatcher.ConfigWatcher, error) {
	cfg := pollwatcher.DefaultConfig(f.Root)
	cfg.ActionPath = f.Action
	if f.Nested {
		cfg.Mode = pollwatcher.ModeNested
	}
	cfg.Filter = f.filter()
	cfg.Interval = time.Duration(f.Interval * float64(time.Second))
	cfg.Report = f.Report
	cfg.ActionArgs = f.Args
	cfg.Prefix = f.Prefix

	if err := cfg.Normalize(); err != nil {
		return pollwatcher.ConfigWatcher{}, err
	}
	if err := cfg.Validate(); err != nil {
		return pollwatcher.ConfigWatcher{}, err
	}
	return cfg, nil
}

func (f *File) filter() pollwatcher.Filter {
	return pollwatcher.Filter{
		Include: f.Include,
		Exclude: f.Exclude,
	}
}
