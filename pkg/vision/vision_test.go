package vision

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/zoeyai/osim/pkg/match"
	"github.com/zoeyai/osim/pkg/vision/cv"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version 不应为空")
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions

	if opts.Detector != cv.DetectorSIFT {
		t.Errorf("Detector 错误: got %s, want sift", opts.Detector)
	}
	if opts.Matcher != cv.MatcherBF {
		t.Errorf("Matcher 错误: got %s, want bf", opts.Matcher)
	}
	if opts.RatioThreshold != 0.7 {
		t.Errorf("RatioThreshold 错误: got %.2f, want 0.7", opts.RatioThreshold)
	}
	if opts.K != 2 || opts.PlotMatches != 15 {
		t.Errorf("默认数值错误: %+v", opts)
	}
}

func TestOptions(t *testing.T) {
	original := *GetOptions()
	defer SetOptions(original)

	newOpts := DefaultOptions
	newOpts.RatioThreshold = 0.8
	newOpts.Detector = cv.DetectorORB
	SetOptions(newOpts)

	cfg := defaultCompareConfig()
	if cfg.RatioThreshold != 0.8 || cfg.Detector != cv.DetectorORB {
		t.Errorf("SetOptions 未生效: %+v", cfg.Options)
	}

	ResetOptions()
	if GetOptions().RatioThreshold != 0.7 {
		t.Errorf("ResetOptions 失败: got %.2f", GetOptions().RatioThreshold)
	}
}

func TestCompareConfig(t *testing.T) {
	cfg := defaultCompareConfig()
	if got := cfg.plotSelection(); got != match.Count(15) {
		t.Errorf("默认绘制条件错误: %+v", got)
	}

	var calls int
	for _, opt := range []Option{
		WithDetector(cv.DetectorSURF),
		WithMatcher(cv.MatcherFLANN),
		WithThreshold(0.6),
		WithK(3),
		WithORBFeatures(500),
		WithReadMode(cv.ReadGrayscale),
		WithSelection(match.AtLeast(0.5)),
		WithPlotWidth(800),
		WithDrawOutput("out.png"),
		WithProgress(func(done, total int, name string) { calls++ }),
	} {
		opt(cfg)
	}

	if cfg.Detector != cv.DetectorSURF || cfg.Matcher != cv.MatcherFLANN {
		t.Errorf("算法选项未生效: %+v", cfg.Options)
	}
	if cfg.RatioThreshold != 0.6 || cfg.K != 3 || cfg.ORBFeatures != 500 || cfg.PlotWidth != 800 {
		t.Errorf("数值选项未生效: %+v", cfg.Options)
	}
	if cfg.ReadMode != cv.ReadGrayscale || cfg.drawOutput != "out.png" {
		t.Errorf("选项未生效: %+v", cfg)
	}
	if got := cfg.plotSelection(); got != match.AtLeast(0.5) {
		t.Errorf("WithSelection 未生效: %+v", got)
	}
	cfg.progress(1, 1, "x")
	if calls != 1 {
		t.Error("WithProgress 未生效")
	}
}

func TestRankResults(t *testing.T) {
	results := []*Comparison{
		{Candidate: "a.png", Score: 3},
		{Candidate: "b.png", Score: 12},
		{Candidate: "c.png", Score: 12},
		{Candidate: "d.png", Score: 0},
	}

	got := rankResults(results)
	want := []string{"b.png", "c.png", "a.png", "d.png"}
	if len(got) != len(want) {
		t.Fatalf("结果数量错误: got %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Candidate != name {
			t.Errorf("第 %d 名: got %s, want %s", i+1, got[i].Candidate, name)
		}
	}
	if got[0] != results[1] {
		t.Error("应返回原结果指针")
	}
	if results[0].Candidate != "a.png" {
		t.Error("不应修改输入顺序")
	}
	if len(rankResults(nil)) != 0 {
		t.Error("空输入应返回空结果")
	}
}

// writePattern 生成带纹理的 PNG 测试图像
func writePattern(t *testing.T, path string, shift int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 240, 180))
	for y := 0; y < 180; y++ {
		for x := 0; x < 240; x++ {
			v := uint8(255)
			cx, cy := (x+shift)/20, y/20
			if (cx+cy)%2 == 0 && (cx*7+cy*3)%5 != 0 {
				v = 0
			}
			if (x-120)*(x-120)+(y-90)*(y-90) < 900 {
				v = 128
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestCompareAndRank(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.png")
	same := filepath.Join(dir, "same.png")
	shifted := filepath.Join(dir, "shifted.png")
	writePattern(t, ref, 0)
	writePattern(t, same, 0)
	writePattern(t, shifted, 7)

	res, err := Compare(ref, same, WithDrawOutput(filepath.Join(dir, "out", "match.png")))
	if err != nil {
		t.Fatalf("比对失败: %v", err)
	}
	if res.Keypoints[0] == 0 {
		t.Skip("跳过测试：测试图像没有特征点")
	}
	if res.Score <= 0 {
		t.Errorf("相同图像评分应大于 0, got %d", res.Score)
	}
	if _, err := os.Stat(res.Output); err != nil {
		t.Errorf("匹配绘制结果不存在: %v", err)
	}

	var progress []string
	ranking, err := Rank(ref, []string{shifted, same}, WithProgress(func(done, total int, name string) {
		progress = append(progress, name)
	}))
	if err != nil {
		t.Fatalf("排名失败: %v", err)
	}
	if len(ranking.Results) != 2 || len(progress) != 2 {
		t.Fatalf("结果数量错误: %d / %d", len(ranking.Results), len(progress))
	}
	if ranking.Results[0].Score < ranking.Results[1].Score {
		t.Error("结果应按评分降序")
	}
	if ranking.Best != ranking.Results[0] {
		t.Error("Best 应为第一个结果")
	}
	t.Logf("排名: %+v", ranking.Candidates())
}

func TestCompareImage(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.png")
	writePattern(t, ref, 0)

	f, err := os.Open(ref)
	if err != nil {
		t.Fatal(err)
	}
	img, err := cv.DecodeImage(f)
	f.Close()
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}

	res, err := CompareImage(ref, "stdin", img, WithReadMode(cv.ReadGrayscale))
	if err != nil {
		t.Fatalf("比对失败: %v", err)
	}
	if res.Candidate != "stdin" {
		t.Errorf("候选名称错误: got %q, want stdin", res.Candidate)
	}
	if res.Keypoints[0] != res.Keypoints[1] {
		t.Errorf("同一图像的特征点数应一致: %v", res.Keypoints)
	}

	if _, err := CompareImage(ref, "stdin", nil); !errors.Is(err, match.ErrInvalidArgument) {
		t.Errorf("空图像应返回 ErrInvalidArgument, got %v", err)
	}
}

func TestCompareErrors(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.png")
	writePattern(t, ref, 0)

	if _, err := Compare(ref, ref, WithDetector("kaze")); !errors.Is(err, match.ErrInvalidArgument) {
		t.Errorf("未知算法应返回 ErrInvalidArgument, got %v", err)
	}
	if _, err := Compare(ref, ref, WithMatcher("lsh")); !errors.Is(err, match.ErrNotImplemented) {
		t.Errorf("未知匹配器应返回 ErrNotImplemented, got %v", err)
	}
	if _, err := Compare(ref, filepath.Join(dir, "missing.png")); err == nil {
		t.Error("文件不存在应返回错误")
	}
	if _, err := Rank(ref, []string{filepath.Join(dir, "missing.png")}); err == nil {
		t.Error("候选文件不存在应返回错误")
	}

	ranking, err := Rank(ref, nil)
	if err != nil {
		t.Fatalf("空候选不应报错: %v", err)
	}
	if ranking.Best != nil {
		t.Error("空候选时 Best 应为 nil")
	}
}
