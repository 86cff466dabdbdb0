// Package xrotate 提供日志文件轮转功能。
//
// Rotator 接口定义了轮转器的核心行为（Write/Close/Rotate），所有实现并发安全。
//
// # 当前实现
//
//   - [NewSizeAndTime]: 大小 + 时间双触发轮转，归档文件 gzip 压缩。
//     单文件超过 RotateSize（默认 20 MiB）或距上次轮转超过
//     RotateInterval（默认 24h）时触发。适用于既要控制单文件体积、
//     又要保证按天切分的场景。
//   - [NewLumberjack]: 基于 lumberjack v2 的按大小轮转，
//     提供备份数量/天数清理策略。
//
// # 失败语义
//
// 轮转过程中的 I/O 错误不会中断进程：压缩失败时保留未压缩的归档文件并通过
// OnError 回调上报，活动文件的切换仍然完成。每次写入独立重新评估是否需要
// 轮转，没有重试循环。
//
// # 扩展新实现
//
//  1. 创建新文件实现 Rotator 接口
//  2. 定义独立的 Config 和 Option
//  3. 提供独立的构造函数
//  4. 不修改 Rotator 接口
package xrotate
