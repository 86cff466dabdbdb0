// Package xenv 提供 .env 文件加载和环境变量安全输出。
//
// # 加载
//
// [Load] 把 .env 文件中的变量加载到进程环境，已存在的变量不覆盖；
// [Overload] 覆盖已存在的变量。底层基于 gotenv。
//
// # 安全输出
//
// [LogVars] 把进程环境变量记录到 logger，命中敏感命名模式
// （password、token、secret 等）的值自动替换为掩码，
// 用于启动时输出诊断信息而不泄露凭证。
package xenv
