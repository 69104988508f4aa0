package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]Level{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		"Error":   ERROR,
		"":        INFO,
		"verbose": INFO,
	}
	for input, want := range testCases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Debug("隐藏 %d", 1)
	l.Info("显示 %d", 2)
	if strings.Contains(buf.String(), "隐藏") {
		t.Error("INFO 级别不应输出 DEBUG 日志")
	}
	if !strings.Contains(buf.String(), "显示 2") {
		t.Errorf("应输出 INFO 日志, got %q", buf.String())
	}

	l.SetLevel(DEBUG)
	l.Debug("调试")
	if !strings.Contains(buf.String(), "调试") {
		t.Error("DEBUG 级别应输出 DEBUG 日志")
	}

	buf.Reset()
	l.SetEnabled(false)
	l.Error("关闭")
	if buf.Len() != 0 {
		t.Errorf("关闭后不应输出, got %q", buf.String())
	}
}

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.LogEvent("KNN", true, 12.34, "bf | 10 组对应")
	out := buf.String()
	for _, want := range []string{"KNN", "OK", "12.3", "bf | 10 组对应"} {
		if !strings.Contains(out, want) {
			t.Errorf("事件日志缺少 %q: %q", want, out)
		}
	}

	buf.Reset()
	l.LogEvent("MAT", false, 1, "失败")
	if !strings.Contains(buf.String(), "NG") {
		t.Errorf("失败事件应标记 NG: %q", buf.String())
	}
}

func TestSetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osim.log")
	l := NewWithWriter(nil)

	if err := l.SetFile(true, path); err != nil {
		t.Fatalf("设置日志文件失败: %v", err)
	}
	l.Warn("写入文件")
	if err := l.Close(); err != nil {
		t.Fatalf("关闭失败: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "写入文件") {
		t.Errorf("日志文件内容错误: %q", data)
	}

	if err := l.SetFile(true, filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Error("目录不存在时应返回错误")
	}
}

func TestFileKeepsConsoleColor(t *testing.T) {
	saved := isTerminal
	defer func() { isTerminal = saved }()

	var console bytes.Buffer
	isTerminal = func(w io.Writer) bool { return w == &console }

	path := filepath.Join(t.TempDir(), "osim.log")
	l := NewWithWriter(&console)
	if err := l.SetFile(true, path); err != nil {
		t.Fatalf("设置日志文件失败: %v", err)
	}
	l.Warn("双路输出")
	l.LogEvent("KNN", true, 1.5, "带属性")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "双路输出") || !strings.Contains(string(data), "cat=KNN") {
		t.Errorf("日志文件内容错误: %q", data)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("日志文件不应包含颜色: %q", data)
	}
	if !strings.Contains(console.String(), "双路输出") {
		t.Errorf("控制台缺少日志: %q", console.String())
	}
	if !strings.Contains(console.String(), "\x1b[") {
		t.Errorf("终端输出应带颜色: %q", console.String())
	}
}
