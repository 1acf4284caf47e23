// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"skypark/internal/pkg/logger"
	"skypark/internal/pkg/tracing"
)

type AppCtx struct {
	Mux *http.ServeMux
}

// BackgroundTask 是随服务生命周期运行的后台任务（如扩展目录监听）。
// ctx 被取消时任务必须尽快返回。
type BackgroundTask func(ctx context.Context) error

// AppInfo 包含了启动服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 每个服务注册自己独有的 HTTP 路由
	BackgroundTasks  []BackgroundTask
	OnShutdown       func(ctx context.Context) // 关停时的清理回调
}

// StartService 封装了通用的启动与优雅关停逻辑。
func StartService(info AppInfo) {
	// 1. Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, GetCurrentConfig().Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 2. HTTP Server
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}

	// 3. 后台任务与 HTTP 服务统一交给 errgroup 监管
	rootCtx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(rootCtx)

	group.Go(func() error {
		logger.Logger.Info().Str("addr", server.Addr).Msgf("%s listening", info.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	for _, task := range info.BackgroundTasks {
		task := task
		group.Go(func() error { return task(groupCtx) })
	}

	// 4. 等待退出信号或任一后台任务失败
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Logger.Info().Str("signal", sig.String()).Msgf("shutting down %s", info.ServiceName)
	case <-groupCtx.Done():
		logger.Logger.Error().Err(groupCtx.Err()).Msg("background task failed, shutting down")
	}
	cancel()

	// 5. 带超时的关停流程，按依赖的反序清理
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if info.OnShutdown != nil {
		info.OnShutdown(shutdownCtx)
	}

	// 关闭 Tracer Provider，确保缓冲中的 trace 全部送出
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down tracer provider")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down http server")
	}

	if err := group.Wait(); err != nil {
		logger.Logger.Error().Err(err).Msg("background task exited with error")
	}

	logger.Logger.Info().Msgf("%s gracefully shut down", info.ServiceName)
}
