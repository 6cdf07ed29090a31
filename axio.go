// Package axio
// 前摄器模式的异步 I/O 核心：一个反应器复用套接字就绪、定时器与信号，
// 操作提交一次、完成回调稍后交付，工作线程数量不限。
//
// Linux 下以 epoll 作为就绪通知后端，其它通知机制按 aio.Backend 契约接入。
package axio
