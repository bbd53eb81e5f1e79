package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pbaille/netbook/internal/api"
	"github.com/pbaille/netbook/internal/config"
	"github.com/pbaille/netbook/internal/contactbook"
	"github.com/pbaille/netbook/internal/conversation"
	"github.com/pbaille/netbook/internal/router"
	"github.com/pbaille/netbook/internal/store"
	"github.com/pbaille/netbook/internal/telegram"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var dbPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "netbook",
		Short:        "Personal networking contact book for Telegram",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides DATABASE_URL)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(contactsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.URL = dbPath
	}
	return cfg, nil
}

func getStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.DatabasePath()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return store.New(path)
}

func sessionStore(cfg *config.Config) (conversation.Store, func() error, error) {
	if cfg.Session.Backend != "badger" {
		return conversation.NewMemoryStore(), func() error { return nil }, nil
	}
	opts := badger.DefaultOptions(cfg.Session.Path).WithLoggingLevel(badger.ERROR)
	bs, err := conversation.NewBadgerStore(opts, cfg.Session.TTL)
	if err != nil {
		return nil, nil, err
	}
	return bs, bs.Close, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := cfg.Logger(os.Stderr)

			if err := cfg.RequireToken(); err != nil {
				log.Error("startup failed", "err", err)
				return err
			}

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			sessions, closeSessions, err := sessionStore(cfg)
			if err != nil {
				return err
			}
			defer closeSessions()

			botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
			if err != nil {
				return fmt.Errorf("connect to telegram: %w", err)
			}
			log.Info("authorized", "bot", botAPI.Self.UserName, "session_backend", cfg.Session.Backend)

			book := contactbook.New(s)
			flows := conversation.NewEngine(sessions, book)
			r := router.New(book, flows, log)
			bot := telegram.New(botAPI, r, log, telegram.Options{
				Workers:     cfg.Telegram.Workers,
				PollTimeout: cfg.Telegram.PollTimeout,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return bot.Run(ctx) })
			if cfg.HTTP.Addr != "" {
				g.Go(func() error { return api.New(s, cfg.HTTP.Addr, log).Run(ctx) })
			}

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("stopped")
			return nil
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Printf("Database ready: %s\n", cfg.DatabasePath())
			return nil
		},
	}
}

func categoriesCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List a user's categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			cats, err := contactbook.New(s).CategoriesFull(cmd.Context(), userID)
			if err != nil {
				return err
			}

			if len(cats) == 0 {
				fmt.Println("No categories yet.")
				return nil
			}

			for _, c := range cats {
				fmt.Printf("%6d  %s\n", c.ID, c.Name)
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "telegram user id")
	cmd.MarkFlagRequired("user")
	return cmd
}

func contactsCmd() *cobra.Command {
	var userID, categoryID int64

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Show the contacts of one of a user's categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			text, err := contactbook.New(s).ListContactsText(cmd.Context(), userID, categoryID)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "telegram user id")
	cmd.Flags().Int64VarP(&categoryID, "category", "c", 0, "category id")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("category")
	return cmd
}
