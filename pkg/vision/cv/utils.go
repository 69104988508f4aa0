package cv

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ReadImage 读取图像文件
// OpenCV 无法解码时回退到 Go 解码器 (gif, webp, bmp, tiff)
func ReadImage(filename string, mode ReadMode) (gocv.Mat, error) {
	mat := gocv.IMRead(filename, mode.flag())
	if !mat.Empty() {
		return mat, nil
	}
	mat.Close()

	img, err := decodeFile(filename)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("无法读取图像: %s: %w", filename, err)
	}
	return imageMat(img, mode)
}

func decodeFile(filename string) (image.Image, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeImage(f)
}

// DecodeImage 使用 Go 解码器读取图像 (png, jpeg, gif, webp, bmp, tiff)
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("解码失败: %w", err)
	}
	return img, nil
}

// imageMat 按读取模式转换为 gocv.Mat
func imageMat(img image.Image, mode ReadMode) (gocv.Mat, error) {
	color, err := ImageToMat(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	if mode != ReadGrayscale {
		return color, nil
	}
	defer color.Close()
	return ToGray(color), nil
}

// WriteImage 保存图像文件
func WriteImage(filename string, img gocv.Mat) error {
	// 确保目录存在
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	if ok := gocv.IMWrite(filename, img); !ok {
		return fmt.Errorf("保存图像失败: %s", filename)
	}
	return nil
}

// ToGray 转换为灰度图
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return dst
}

// FitWidth 按比例缩小到不超过 maxWidth，maxWidth <= 0 时原样复制
func FitWidth(img gocv.Mat, maxWidth int) gocv.Mat {
	if maxWidth <= 0 || img.Cols() <= maxWidth {
		return img.Clone()
	}
	height := img.Rows() * maxWidth / img.Cols()
	dst := gocv.NewMat()
	gocv.Resize(img, &dst, image.Point{X: maxWidth, Y: max(height, 1)}, 0, 0, gocv.InterpolationArea)
	return dst
}

// ImageToMat 将 image.Image 转换为 BGR gocv.Mat
func ImageToMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("图像转换失败: %w", err)
	}
	// 转换为 BGR（OpenCV 默认格式）
	dst := gocv.NewMat()
	gocv.CvtColor(mat, &dst, gocv.ColorRGBToBGR)
	mat.Close()
	return dst, nil
}
