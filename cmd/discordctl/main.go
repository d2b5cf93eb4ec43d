// discordctl: herramientas para probar el login con Discord.
//
//	discordctl profile --token <access_token>
//	discordctl scope guilds --token <access_token>
//	discordctl snowflake 896657711104667719
//	discordctl authorize-url --state xyz --permissions 8
//	discordctl serve
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/discordauth/internal/config"
	"github.com/dropDatabas3/discordauth/internal/observability/logger"
)

var version = "dev"

type globals struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func main() {
	// .env opcional
	_ = godotenv.Load()

	g := &globals{configPath: envOr("DISCORDAUTH_CONFIG", "config.yaml")}

	root := &cobra.Command{
		Use:           "discordctl",
		Short:         "Login con Discord: perfil, scopes, snowflakes y server de ejemplo",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			if g.logLevel != "" {
				cfg.App.LogLevel = g.logLevel
			}
			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       cfg.App.LogLevel,
				ServiceName: "discordctl",
				Version:     version,
			})
			g.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", g.configPath, "Archivo YAML de config (env DISCORDAUTH_CONFIG)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug|info|warn|error (pisa app.log_level)")

	root.AddCommand(
		profileCmd(g),
		scopeCmd(g),
		userinfoCmd(g),
		snowflakeCmd(),
		authorizeURLCmd(g),
		scopesCmd(),
		serveCmd(g),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
