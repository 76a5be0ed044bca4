package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/database"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"github.com/weiwangfds/lzydiary/internal/repository"
	"github.com/weiwangfds/lzydiary/internal/router"
	"github.com/weiwangfds/lzydiary/internal/service/auth"
	"github.com/weiwangfds/lzydiary/internal/service/collection"
	"github.com/weiwangfds/lzydiary/internal/service/countdown"
	"github.com/weiwangfds/lzydiary/internal/service/diary"
	"github.com/weiwangfds/lzydiary/internal/service/lifecycle"
	"github.com/weiwangfds/lzydiary/internal/service/location"
	"github.com/weiwangfds/lzydiary/internal/service/storage"
	"github.com/weiwangfds/lzydiary/internal/service/visitor"
	"golang.org/x/net/http2"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "lzydiary",
		Short:         "LZY 日记后端服务",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径，默认查找 ./config.yaml 和 ./config/config.yaml")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "启动 HTTP 服务（默认命令）",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "只执行数据库迁移",
			RunE:  runMigrate,
		},
		newGeocodeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 加载配置并初始化日志
func setup() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(&logger.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func runMigrate(*cobra.Command, []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	db, err := database.Init(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	logger.Infof("数据库迁移完成 (%s)", cfg.Database.Driver)
	return nil
}

func newGeocodeCmd() *cobra.Command {
	var lat, lon float64
	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "解析一个坐标并输出地址",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			resolver := location.NewResolverFromConfig(cfg.Geocode)
			fmt.Fprintln(cmd.OutOrStdout(), resolver.Resolve(cmd.Context(), lat, lon))
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "纬度")
	cmd.Flags().Float64Var(&lon, "lon", 0, "经度")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func runServe(*cobra.Command, []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	// 日志级别支持热更新，其余配置需要重启
	if err := config.Watch(configFile, func(next *config.Config) {
		logger.SetLevel(next.Log.Level)
		logger.Infof("配置文件已变更，日志级别: %s", next.Log.Level)
	}); err != nil {
		logger.Debugf("未监听配置文件: %v", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	blobs, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	store := repository.NewStore(db)
	resolver := location.NewResolverFromConfig(cfg.Geocode)

	// 没有管理员密钥时不能把 nil *Admin 放进接口
	var admin lifecycle.IdentityAdmin
	if a := auth.NewAdmin(store, cfg.Auth.AdminKey); a != nil {
		admin = a
	} else {
		logger.Warnf("未配置 auth.admin_key，删除账户功能不可用")
	}

	r := router.NewRouter(cfg, router.Services{
		Auth:        auth.NewService(store, cfg.Auth),
		Coordinator: lifecycle.NewCoordinator(store, blobs, admin),
		Diaries:     diary.NewService(store, resolver),
		Collections: collection.NewService(store),
		Countdowns:  countdown.NewService(store),
		Resolver:    resolver,
		Visitors:    visitor.NewRecorder(store),
		Blobs:       blobs,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      r.GetEngine(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
	if cfg.Server.EnableHTTPS {
		srv.TLSConfig = &tls.Config{NextProtos: []string{"h2", "http/1.1"}}
		if cfg.Server.EnableHTTP2 {
			if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
				return fmt.Errorf("配置HTTP/2失败: %w", err)
			}
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("服务启动在 %s (HTTPS: %v, HTTP/2: %v)", srv.Addr, cfg.Server.EnableHTTPS, cfg.Server.EnableHTTP2)
		var err error
		if cfg.Server.EnableHTTPS {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("服务启动失败: %w", err)
	case <-quit:
	}

	logger.Info("正在关闭服务器...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("服务器强制关闭: %w", err)
	}
	logger.Info("服务器已退出")
	return nil
}
