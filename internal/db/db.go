package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// directPathIndexSQL 保证启用直达链接的卡片 slug 不区分大小写唯一。
const directPathIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_cards_direct_path_enabled ON cards (LOWER(direct_path)) WHERE direct_link_enabled`

// Init 初始化数据库连接并执行迁移。
// sqlite 下 dsn 为空时将回退到默认值 hrimajin.db。
func Init(driver, dsn string, gormLogger logger.Interface) error {
	gdb, err := Open(driver, dsn, gormLogger)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 根据驱动名打开 gorm 连接，不执行迁移。
func Open(driver, dsn string, gormLogger logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if gormLogger != nil {
		cfg.Logger = gormLogger
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		gdb, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return gdb, nil
	case "", DriverSQLite:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "hrimajin.db"
		}
		if !strings.HasPrefix(path, "file:") {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		gdb, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate 创建 cards 表以及直达路径的部分唯一索引。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&Card{}); err != nil {
		return fmt.Errorf("migrate cards: %w", err)
	}
	if err := gdb.Exec(directPathIndexSQL).Error; err != nil {
		return fmt.Errorf("create direct path index: %w", err)
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
