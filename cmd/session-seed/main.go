package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"wholesale-registration-app/internal/config"
	"wholesale-registration-app/internal/infrastructure/repository"
	shopifyinfra "wholesale-registration-app/internal/infrastructure/shopify"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	shopFlag := flag.String("shop", "", "Shop domain (e.g. my-store or my-store.myshopify.com)")
	tokenFlag := flag.String("token", "", "Offline Admin API access token (shpat_...)")
	scopeFlag := flag.String("scope", "write_companies,write_customers,write_content,write_online_store_navigation", "Granted access scopes")
	verifyFlag := flag.Bool("verify", true, "Check the token against the Admin API before storing it")
	flag.Parse()

	shop := strings.TrimSpace(*shopFlag)
	token := strings.TrimSpace(*tokenFlag)
	if shop == "" || token == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/session-seed --shop my-store.myshopify.com --token shpat_xxx [--verify=false]")
		os.Exit(1)
	}
	shop, err := normalizeShop(shop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v.\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *verifyFlag {
		client := shopifyinfra.NewRawClient(shop, token, cfg.Shopify.APIVersion, &http.Client{Timeout: cfg.Shopify.AdminTimeout})
		info, valid, err := shopifyinfra.NewTokenChecker(logger).Check(ctx, client)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to verify token: %v\n", err)
			os.Exit(1)
		}
		if !valid {
			fmt.Fprintf(os.Stderr, "Error: Shopify rejected the access token for %s.\n", shop)
			os.Exit(1)
		}
		logger.Info().Str("shop", info.MyshopifyDomain).Str("name", info.Name).Msg("Token verified")
	}

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		rdb, err = repository.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to configure Redis: %v\n", err)
			os.Exit(1)
		}
		defer rdb.Close()
	}

	storage, closeStorage, err := repository.OpenSessionStorage(ctx, cfg.Sessions, rdb)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session storage: %v\n", err)
		os.Exit(1)
	}
	defer closeStorage(context.Background())

	session, err := seedSession(ctx, storage, shop, token, *scopeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed session: %v\n", err)
		os.Exit(1)
	}

	logger.Info().
		Str("backend", cfg.Sessions.Backend).
		Str("session_id", session.ID).
		Msg("Offline session stored")
}
