package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zoeyai/osim/pkg/config"
	"github.com/zoeyai/osim/pkg/match"
	"github.com/zoeyai/osim/pkg/vision/cv"
)

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := expandPaths([]string{filepath.Join(dir, "*.png"), "literal.png"})
	if err != nil {
		t.Fatalf("展开失败: %v", err)
	}
	want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png"), "literal.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("展开结果不一致 (-want +got):\n%s", diff)
	}

	if _, err := expandPaths([]string{"[bad"}); err == nil {
		t.Error("无效通配符应返回错误")
	}
}

func TestVisionOptions(t *testing.T) {
	c := config.Default()
	c.Detector = "ORB"
	c.Matcher = "flann"
	c.RatioThreshold = 0.75
	c.K = 3

	opts, err := visionOptions(c)
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if opts.Detector != cv.DetectorORB || opts.Matcher != cv.MatcherFLANN {
		t.Errorf("算法错误: %s / %s", opts.Detector, opts.Matcher)
	}
	if opts.RatioThreshold != 0.75 || opts.K != 3 || opts.PlotMatches != 15 {
		t.Errorf("数值错误: %+v", opts)
	}

	c.Detector = "kaze"
	if _, err := visionOptions(c); !errors.Is(err, match.ErrInvalidArgument) {
		t.Errorf("未知算法应返回 ErrInvalidArgument, got %v", err)
	}
	c.Detector = "sift"
	c.Matcher = "lsh"
	if _, err := visionOptions(c); !errors.Is(err, match.ErrNotImplemented) {
		t.Errorf("未知匹配器应返回 ErrNotImplemented, got %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	saved := cfg
	defer func() { cfg = saved }()

	dir := t.TempDir()
	cfg = config.Default()
	cfg.OutputDir = filepath.Join(dir, "out")

	if got := outputPath("match.png"); got != filepath.Join(dir, "out", "match.png") {
		t.Errorf("文件名应放到输出目录: %s", got)
	}
	if got := outputPath("sub/match.png"); got != "sub/match.png" {
		t.Errorf("带目录的路径应原样返回: %s", got)
	}
	if got := outputPath(""); got != "" {
		t.Errorf("空路径应原样返回: %s", got)
	}
}

func TestBrokenConfigStillRepairable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("k: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) error {
		root := newRootCmd()
		root.SetArgs(append([]string{"--config", path}, args...))
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		return root.Execute()
	}

	if err := run("compare", "a.png", "b.png"); err == nil {
		t.Fatal("k=1 时比对命令应校验失败")
	}
	if err := run("version"); err != nil {
		t.Errorf("version 不应校验配置: %v", err)
	}
	if err := run("config", "init", "--force"); err != nil {
		t.Fatalf("config init --force 应能覆盖损坏的配置: %v", err)
	}

	loaded, err := config.NewManagerWithFile(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(config.Default(), loaded); diff != "" {
		t.Errorf("覆盖后的配置不一致 (-want +got):\n%s", diff)
	}
}

func TestSkipsSetup(t *testing.T) {
	root := newRootCmd()
	for _, tc := range []struct {
		args []string
		want bool
	}{
		{[]string{"config", "show"}, true},
		{[]string{"config", "init"}, true},
		{[]string{"version"}, true},
		{[]string{"compare"}, false},
		{[]string{"rank"}, false},
	} {
		cmd, _, err := root.Find(tc.args)
		if err != nil {
			t.Fatal(err)
		}
		if got := skipsSetup(cmd); got != tc.want {
			t.Errorf("%v: got %v, want %v", tc.args, got, tc.want)
		}
	}
}
