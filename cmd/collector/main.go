package main

import (
	"flag"
	"os"

	"github.com/taoyao-code/btwattch2-collector/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/logging"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: $WATTCH_CONFIG or ./collector.yaml)")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// 3) 启动
	if err := bootstrap.Run(cfg, logger); err != nil {
		logger.Error("collector exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
