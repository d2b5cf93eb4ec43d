package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dropDatabas3/discordauth/internal/config"
	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
	"github.com/dropDatabas3/discordauth/internal/observability/logger"
	"github.com/dropDatabas3/discordauth/internal/providers"
	discordprovider "github.com/dropDatabas3/discordauth/internal/providers/discord"
	"github.com/dropDatabas3/discordauth/internal/server"
)

func tokenFlag(cmd *cobra.Command, token *string) {
	cmd.Flags().StringVar(token, "token", os.Getenv("DISCORD_ACCESS_TOKEN"), "Access token del usuario (env DISCORD_ACCESS_TOKEN)")
}

func requireToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("--token es requerido")
	}
	return nil
}

func apiBase(cfg *config.Config) string {
	if cfg.Discord.APIBaseURL != "" {
		return strings.TrimRight(cfg.Discord.APIBaseURL, "/")
	}
	return discord.DefaultAPIBaseURL
}

// profile: resuelve el perfil solo con el access token; no necesita client id.
func profileCmd(g *globals) *cobra.Command {
	var token string
	var noScopes bool
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Resolver /users/@me (+ connections/guilds si están en discord.scopes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(token); err != nil {
				return err
			}
			getter, cleanup, err := server.NewGetter(g.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := g.cfg.DiscordOptions()
			usersMe := apiBase(g.cfg) + "/users/@me"
			fetcher := discord.NewFetcher(getter, usersMe, discord.NewScopeSet(opts.Scope...), opts.ScopeDelay)
			fetch := !noScopes && (opts.FetchScopeEnabled == nil || *opts.FetchScopeEnabled)
			resolver := discord.NewResolver(getter, usersMe, fetcher, fetch)

			p, err := resolver.Resolve(cmd.Context(), token)
			if err != nil {
				return err
			}
			p.AccessToken = ""
			return printJSON(p)
		},
	}
	tokenFlag(cmd, &token)
	cmd.Flags().BoolVar(&noScopes, "no-scopes", false, "No pedir connections/guilds")
	return cmd
}

func scopeCmd(g *globals) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "scope <scope>",
		Short: "Traer /users/@me/<scope> (solo si está en discord.scopes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(token); err != nil {
				return err
			}
			scope, err := discord.ParseScope(args[0])
			if err != nil {
				return err
			}
			getter, cleanup, err := server.NewGetter(g.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := g.cfg.DiscordOptions()
			fetcher := discord.NewFetcher(getter, apiBase(g.cfg)+"/users/@me", discord.NewScopeSet(opts.Scope...), opts.ScopeDelay)
			data, err := fetcher.Fetch(cmd.Context(), scope, token)
			if err != nil {
				return err
			}
			if data == nil {
				return fmt.Errorf("scope %s no está en discord.scopes, no se pidió nada", scope)
			}
			fmt.Println(string(data))
			return nil
		},
	}
	tokenFlag(cmd, &token)
	return cmd
}

// userinfo: perfil normalizado vía el registry de providers.
func userinfoCmd(g *globals) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "userinfo",
		Short: "Perfil normalizado (provider registry)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(token); err != nil {
				return err
			}
			getter, cleanup, err := server.NewGetter(g.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := []discord.StrategyOption{discord.WithGetter(getter)}
			if g.cfg.Discord.APIBaseURL != "" {
				opts = append(opts, discord.WithAPIBaseURL(g.cfg.Discord.APIBaseURL))
			}
			reg := providers.NewRegistry()
			reg.RegisterFactory(discordprovider.ProviderName, discordprovider.NewFactory(opts...))

			p, err := reg.Get(discordprovider.ProviderName, providers.ProviderConfig{
				ClientID:     g.cfg.Discord.ClientID,
				ClientSecret: g.cfg.Discord.ClientSecret,
				RedirectURI:  g.cfg.Discord.CallbackURL,
				Scopes:       g.cfg.Discord.Scopes,
				Extra: map[string]string{
					discordprovider.ExtraScopeDelay: g.cfg.Discord.ScopeDelay,
					discordprovider.ExtraFetchScope: fmt.Sprint(*g.cfg.Discord.FetchScope),
				},
			})
			if err != nil {
				return err
			}
			up, err := p.UserInfo(cmd.Context(), token)
			if err != nil {
				return err
			}
			return printJSON(up)
		},
	}
	tokenFlag(cmd, &token)
	return cmd
}

func snowflakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snowflake <id>...",
		Short: "Fecha de creación de ids de Discord",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			var failed bool
			for _, id := range args {
				t, err := discord.DeriveCreationTime(id)
				if err != nil {
					fmt.Fprintf(tw, "%s\terror: %v\n", id, err)
					failed = true
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\n", id, t.Format(time.RFC3339Nano), t.UnixMilli())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if failed {
				return errors.New("uno o más ids inválidos")
			}
			return nil
		},
	}
}

func authorizeURLCmd(g *globals) *cobra.Command {
	var state string
	params := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "authorize-url",
		Short: "Armar la URL de autorización",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := discord.New(g.cfg.DiscordOptions(), server.VerifyUser)
			if err != nil {
				return err
			}
			opts := make(map[string]string)
			for k, v := range params {
				if cmd.Flags().Changed(strings.ReplaceAll(k, "_", "-")) {
					opts[k] = *v
				}
			}
			fmt.Println(s.AuthCodeURL(state, opts))
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "Valor de state")
	for _, k := range []string{"permissions", "prompt", "guild_id", "disable_guild_select", "integration_type"} {
		params[k] = cmd.Flags().String(strings.ReplaceAll(k, "_", "-"), "", "Parámetro "+k)
	}
	return cmd
}

func scopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scopes",
		Short: "Listar los scopes de Discord",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range discord.AllScopes() {
				fmt.Fprintf(tw, "%s\t%s\n", s, s.Description())
			}
			return tw.Flush()
		},
	}
}

func serveCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levantar la app de ejemplo (/auth/discord, /me, /metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				g.cfg.Server.Addr = addr
			}
			log := logger.L()

			h, cleanup, err := server.Build(g.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := cleanup(); err != nil {
					log.Warn("cleanup error", logger.Err(err))
				}
			}()

			srv := &http.Server{
				Addr:              g.cfg.Server.Addr,
				Handler:           h,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("server listening", logger.Component("server"), zap.String("addr", g.cfg.Server.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Dirección de escucha (pisa server.addr)")
	return cmd
}
