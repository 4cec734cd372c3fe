// Command hrimajinctl 是卡片数据的运维命令行工具。
package main

import (
	"fmt"
	"os"

	"github.com/hrimajin/internal/config"
	"github.com/hrimajin/internal/db"
	"github.com/hrimajin/internal/directpath"
	"github.com/hrimajin/internal/service"
	"github.com/hrimajin/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type cliOptions struct {
	driver  string
	dsn     string
	verbose bool
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "hrimajinctl",
		Short:         "Manage hrimajin gallery cards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.driver, "driver", cfg.DatabaseDriver, "database driver (sqlite|postgres)")
	root.PersistentFlags().StringVar(&opts.dsn, "db", cfg.DatabaseURL, "database path or DSN")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log SQL and service events")

	root.AddCommand(
		newSeedCmd(opts, cfg),
		newCheckPathCmd(opts, cfg),
		newListCmd(opts, cfg),
		newHashPasswordCmd(),
	)
	return root
}

// openCards 打开数据库并执行迁移，返回卡片服务以及关闭函数。
func openCards(opts *cliOptions, cfg config.AppConfig) (*service.CardService, func(), error) {
	gormLogger := logger.Default.LogMode(logger.Silent)
	log := zap.NewNop()
	if opts.verbose {
		dev, err := zap.NewDevelopment()
		if err == nil {
			log = dev
		}
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	gdb, err := db.Open(opts.driver, opts.dsn, gormLogger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		closeDB(gdb)
		return nil, nil, err
	}

	directpath.Reserve(cfg.UploadSegment())

	var bucket storage.Bucket
	if local, err := storage.NewLocalBucket(cfg.UploadDir, cfg.UploadURLPath, cfg.PublicBaseURL); err == nil {
		bucket = local
	}

	svc := service.NewCardService(gdb, bucket, log)
	return svc, func() {
		closeDB(gdb)
		_ = log.Sync()
	}, nil
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
