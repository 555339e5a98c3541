package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sandwichcheck/cmd"
	"sandwichcheck/config"
	"sandwichcheck/db"
	"sandwichcheck/logger"
)

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(config.ConfigPath)

	if err := viper.MergeInConfig(); err != nil {
		logger.GlobalLogger.Warn("Error reading config.yaml file, if you don't have config.yaml file, please create one from config-example.yaml", "err", err)
	}

	if err := godotenv.Load(config.ConfigPath + ".env"); err != nil {
		logger.GlobalLogger.Warn("Error reading .env file, if you don't have .env file, please create one from .env-example", "err", err)
	}

	viper.AutomaticEnv()

	if lvl := viper.GetString("log.level"); lvl != "" {
		logger.SetLevel(logger.ParseLevel(lvl))
	}
}

func initDB() {
	if !viper.GetBool("clickhouse.enabled") {
		return
	}
	ch, err := db.NewClickhouse()
	if err != nil {
		logger.GlobalLogger.Error("Failed to open ClickHouse", "err", err)
		return
	}
	defer ch.Close()

	logger.GlobalLogger.Info("Try to ensure database and tables exist")

	if err := ch.EnsureDatabaseExists(); err != nil {
		logger.GlobalLogger.Error("Failed to ensure database", "err", err)
		return
	}

	if err := ch.CreateTables(); err != nil {
		logger.GlobalLogger.Error("Failed to create tables", "err", err)
	}
}

func main() {
	initConfig()
	initDB()
	code := 0
	if err := cmd.RootCmd.Execute(); err != nil {
		logger.GlobalLogger.Error("Error executing command", "err", err)
		code = 1
	}

	logger.CloseAll()
	os.Exit(code)
}
