package run

import (
	"time"

	"github.com/John-Robertt/filmmatch/internal/config"
	"github.com/John-Robertt/filmmatch/internal/domain"
)

// Observer 把运行进度/阶段/条目结果从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 文件是串行处理的，但 CLI 的 keepalive ticker 可能并发读取状态，实现仍需自行加锁。
type Observer interface {
	// OnStart 在 Execute 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束/就绪时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemStart 在开始处理某个文件时调用。
	OnItemStart(idx, total int, file string)
	// OnItemDone 在某个文件处理完成时调用。
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
}
