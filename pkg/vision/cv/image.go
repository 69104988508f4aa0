package cv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/zoeyai/osim/pkg/match"
)

// Image 图像及其特征点
// 解码后的像素数据由 Image 独占，使用完需 Close
type Image struct {
	// Path 图像文件路径，内存图像为调用方给定的名称
	Path string

	mat         gocv.Mat
	keypoints   []gocv.KeyPoint
	descriptors gocv.Mat
	detector    DetectorKind
	fitted      bool
}

// LoadImage 读取图像文件
func LoadImage(path string, mode ReadMode) (*Image, error) {
	mat, err := ReadImage(path, mode)
	if err != nil {
		return nil, err
	}
	return &Image{Path: path, mat: mat}, nil
}

// NewImage 从已解码的图像创建，name 用于日志与结果展示
func NewImage(name string, img image.Image, mode ReadMode) (*Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: 图像为空", match.ErrInvalidArgument)
	}
	mat, err := imageMat(img, mode)
	if err != nil {
		return nil, err
	}
	return &Image{Path: name, mat: mat}, nil
}

// Name 图像名称（文件路径）
func (im *Image) Name() string {
	if im.Path == "" {
		return "<memory>"
	}
	return im.Path
}

// Mat 原始图像
func (im *Image) Mat() gocv.Mat {
	return im.mat
}

// Size 返回 (宽, 高, 通道数)
func (im *Image) Size() (int, int, int) {
	return im.mat.Cols(), im.mat.Rows(), im.mat.Channels()
}

// FindKeypoints 计算特征点与描述子
func (im *Image) FindKeypoints(d *Detector) error {
	if d == nil {
		return fmt.Errorf("%w: 检测器为空", match.ErrInvalidArgument)
	}
	if im.mat.Empty() {
		return fmt.Errorf("%w: 图像为空: %s", match.ErrInvalidArgument, im.Name())
	}

	keypoints, descriptors := d.Detect(im.mat)
	im.resetFeatures()
	im.keypoints = keypoints
	im.descriptors = descriptors
	im.detector = d.Kind()
	im.fitted = true
	return nil
}

// Fitted 是否已计算特征点
func (im *Image) Fitted() bool {
	return im.fitted
}

// Detector 计算特征点所用的算法
func (im *Image) Detector() DetectorKind {
	return im.detector
}

// Keypoints 特征点
func (im *Image) Keypoints() []gocv.KeyPoint {
	return im.keypoints
}

// Descriptors 描述子
func (im *Image) Descriptors() gocv.Mat {
	return im.descriptors
}

// Close 释放资源
func (im *Image) Close() {
	im.resetFeatures()
	im.mat.Close()
}

func (im *Image) resetFeatures() {
	if im.fitted {
		im.descriptors.Close()
	}
	im.keypoints = nil
	im.descriptors = gocv.Mat{}
	im.detector = ""
	im.fitted = false
}
