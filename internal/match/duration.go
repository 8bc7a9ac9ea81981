package match

import (
	"fmt"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

// Duration 比较时长（分钟）：|actual - expected| <= tolerance 即接受。
// 期望时长未知时跳过；source 仅用于说明（"site" / "registry"）。
func Duration(exp domain.Expectation, actual, tolerance int, source string) Result {
	field := "duration:" + source
	if tolerance < 0 {
		return fail(field, fmt.Errorf("时长容差不能为负：%d", tolerance))
	}
	if !exp.HasDuration() {
		return accept(field, 1, "没有文件时长，跳过")
	}
	if actual <= 0 {
		return reject(field, 0, "%s 没有时长", source)
	}
	diff := actual - exp.Duration
	if diff < 0 {
		diff = -diff
	}
	score := 1 - float64(diff)/float64(exp.Duration)
	if score < 0 {
		score = 0
	}
	if diff <= tolerance {
		return accept(field, score, "")
	}
	return reject(field, score, "时长相差 %d 分钟，超过容差 %d（%s %d vs 文件 %d）", diff, tolerance, source, actual, exp.Duration)
}
