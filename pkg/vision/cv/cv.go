// Package cv 提供基于 OpenCV 的特征点检测与匹配
//
// 支持以下特征点算法:
//   - SIFT
//   - SURF (需要 opencv_contrib nonfree)
//   - ORB
//
// 支持以下匹配器:
//   - 暴力匹配 (bf)
//   - FLANN 匹配 (flann)
//
// 基本用法:
//
//	det, err := cv.NewDetector(cv.DetectorSIFT, cv.DefaultDetectorConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer det.Close()
//
//	ref, _ := cv.LoadImage("ref.png", cv.ReadColor)
//	test, _ := cv.LoadImage("test.png", cv.ReadColor)
//	ref.FindKeypoints(det)
//	test.FindKeypoints(det)
//
//	cmp, _ := cv.NewComparator(cv.MatcherBF)
//	cmp.KnnMatch(ref, test, 2)
//	score, _ := cmp.Score()
//	fmt.Printf("相似度: %d\n", score)
package cv
