package axio

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/brickingsoft/rxp"
)

var (
	executors     rxp.Executors = nil
	executorsOnce sync.Once
)

// Startup
// 启动执行器
//
// axio 的阻塞型后台工作（如异步名字解析）运行在 rxp.Executors 上。
// 默认提供一个执行器，如果需要定制化，则使用 Startup 完成。
// 注意：必须在程序起始位置调用，否则无效。
func Startup(options ...rxp.Option) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case error:
				err = e
				break
			case string:
				err = errors.New(e)
				break
			default:
				err = errors.New(fmt.Sprintf("%+v", r))
				break
			}
		}
	}()
	executors = rxp.New(options...)
	return
}

// Shutdown
// 关闭执行器
//
// 非优雅的，不等待进行中的后台任务（如尚未完成的异步解析）执行完毕，
// 它们的完成回调不会再投递。
func Shutdown() error {
	runtime.SetFinalizer(executors, nil)
	return Executors().Close()
}

// ShutdownGracefully
// 优雅的关闭执行器，等待后台任务执行完毕、完成回调全部投递后返回。
func ShutdownGracefully() error {
	runtime.SetFinalizer(executors, nil)
	return Executors().CloseGracefully()
}

// Executors
// 获取执行器
func Executors() rxp.Executors {
	executorsOnce.Do(func() {
		if executors == nil {
			executors = rxp.New()
			runtime.SetFinalizer(executors, rxp.Executors.CloseGracefully)
		}
	})
	return executors
}
