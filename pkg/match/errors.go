package match

import (
	"errors"
	"fmt"
)

// 错误分类
var (
	// ErrInvalidArgument 参数非法（模型名、负数阈值等）
	ErrInvalidArgument = errors.New("参数非法")
	// ErrInvalidState 当前状态不允许此操作
	ErrInvalidState = errors.New("状态非法")
	// ErrNotImplemented 未实现的匹配器
	ErrNotImplemented = errors.New("未实现")
	// ErrTypeMismatch 不支持的参数类型
	ErrTypeMismatch = errors.New("类型不匹配")
)

// 状态错误
var (
	// ErrNotFitted 图像尚未计算特征点
	ErrNotFitted = fmt.Errorf("%w: 请先计算特征点", ErrInvalidState)
	// ErrNotMatched 尚未执行匹配
	ErrNotMatched = fmt.Errorf("%w: 请先执行匹配", ErrInvalidState)
	// ErrNotKnn 评分只支持 KNN 匹配结果
	ErrNotKnn = fmt.Errorf("%w: 评分需要 KNN 匹配结果", ErrInvalidState)
)
