package cv

import (
	"fmt"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/zoeyai/osim/pkg/match"
)

var (
	matchColor       = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	singlePointColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	keypointColor    = color.RGBA{R: 0, G: 200, B: 255, A: 0}
)

// DrawKeypoints 在灰度图上绘制特征点
func DrawKeypoints(im *Image) (gocv.Mat, error) {
	if !im.Fitted() {
		return gocv.Mat{}, fmt.Errorf("%w: 绘制前请先计算特征点: %s", match.ErrNotFitted, im.Name())
	}

	gray := ToGray(im.Mat())
	defer gray.Close()

	dst := gocv.NewMat()
	gocv.DrawKeyPoints(gray, im.Keypoints(), &dst, keypointColor, gocv.DrawRichKeyPoints)
	return dst, nil
}

// DrawMatches 绘制两张图之间的匹配
//   - 单一匹配: 绘制 Select(sel) 选出的匹配
//   - KNN 匹配: 绘制全部最近邻，掩码由 KnnMask 决定
func (c *Comparator) DrawMatches(sel match.Selection) (gocv.Mat, error) {
	if c.query == nil || c.train == nil {
		return gocv.Mat{}, match.ErrNotMatched
	}

	var (
		drawn []gocv.DMatch
		mask  []byte
		flags = gocv.DrawDefault
	)

	switch c.session.Mode() {
	case match.ModeKnn:
		m, err := c.session.DrawMask(sel)
		if err != nil {
			return gocv.Mat{}, err
		}
		for _, b := range c.session.Matches() {
			drawn = append(drawn, toDMatch(b))
		}
		mask = m.Bytes()
	default:
		selected, err := c.session.Select(sel)
		if err != nil {
			return gocv.Mat{}, err
		}
		for _, s := range selected {
			drawn = append(drawn, toDMatch(s))
		}
		mask = make([]byte, len(drawn))
		for i := range mask {
			mask[i] = 1
		}
		flags = gocv.NotDrawSinglePoints
	}

	out := gocv.NewMat()
	gocv.DrawMatches(c.query.Mat(), c.query.Keypoints(), c.train.Mat(), c.train.Keypoints(),
		drawn, &out, matchColor, singlePointColor, mask, flags)
	return out, nil
}

// Show 在窗口中显示图像，按任意键关闭
func Show(title string, img gocv.Mat) {
	window := gocv.NewWindow(title)
	defer window.Close()

	window.IMShow(img)
	window.WaitKey(0)
}
