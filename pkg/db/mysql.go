package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"instance-doctor/pkg/config"
	"instance-doctor/pkg/store"
)

// Init connects to MySQL and migrates the report table. An empty dsn is
// built from the environment:
//
//	MYSQL_DSN or MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASS, MYSQL_DB
func Init(dsn string) (*gorm.DB, error) {
	_ = config.LoadDotEnv()
	host := config.Getenv("MYSQL_HOST", "127.0.0.1")
	port := config.Getenv("MYSQL_PORT", "3306")
	user := config.Getenv("MYSQL_USER", "root")
	pass := config.Getenv("MYSQL_PASS", "")
	dbname := config.Getenv("MYSQL_DB", "instance_doctor")

	if dsn == "" {
		dsn = config.Getenv("MYSQL_DSN", "")
	}
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", user, pass, host, port, dbname)
	}

	cfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	}
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		// Try to create database if missing
		if !strings.Contains(err.Error(), "Unknown database") {
			return nil, err
		}
		if cerr := createDatabase(user, pass, host, port, dbname); cerr != nil {
			return nil, fmt.Errorf("create database failed: %w", cerr)
		}
		if db, err = gorm.Open(mysql.Open(dsn), cfg); err != nil {
			return nil, err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	if err := db.AutoMigrate(&store.ReportRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

// NewStore opens MySQL and wraps it in a report store.
func NewStore(dsn string) (*store.GormStore, error) {
	db, err := Init(dsn)
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}

func createDatabase(user, pass, host, port, dbname string) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/", user, pass, host, port)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` DEFAULT CHARACTER SET utf8mb4", dbname))
	return err
}
