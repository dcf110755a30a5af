// Package probe 平台相关的采样实现：进程快照、音频输入端点、默认摄像头。
// 每个探针都是一次性、有超时的调用，不在内部保存状态。
package probe
