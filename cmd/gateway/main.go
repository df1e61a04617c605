package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	serviceName = "orderdesk-gateway"
	version     = "1.0.0"
)

// rootCmd базовая команда шлюза
var rootCmd = &cobra.Command{
	Use:          "gateway",
	Short:        "OrderDesk gateway - заказы клиента и чат с ассистентом",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (YAML or JSON)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(serveCmd)
}

func main() {
	// .env не обязателен
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
