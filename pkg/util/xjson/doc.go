// Package xjson 提供面向日志输出的 JSON 序列化工具。
//
// 所有函数都保证"永不失败"：序列化失败时返回可读的降级字符串，
// 而不是向调用方抛出错误。日志路径上的序列化问题不应中断业务流程。
package xjson
