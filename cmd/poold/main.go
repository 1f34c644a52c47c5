// Privacy pool relay daemon: hosts the Merkle accumulator's Postgres
// backing store and a gossip relay node, so wallets can scan and
// submit without each running their own libp2p host.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ccoin/privacypool/internal/merkletree"
	"github.com/ccoin/privacypool/internal/relay"
	"github.com/ccoin/privacypool/internal/storage"
)

const (
	version = "0.1.0"
	banner  = `
  ____       _                           ____            _
 |  _ \ _ __(_)_   ____ _  ___ _   _    |  _ \ ___   ___ | |
 | |_) | '__| \ \ / / _' |/ __| | | |   | |_) / _ \ / _ \| |
 |  __/| |  | |\ V / (_| | (__| |_| |   |  __/ (_) | (_) | |
 |_|   |_|  |_| \_/ \__,_|\___|\__, |   |_|   \___/ \___/|_|
                                |___/
  poold v%s
`
)

// Config holds daemon configuration.
type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	MaxConns   int

	ListenAddr string
}

func main() {
	cfg := parseFlags()

	fmt.Printf(banner, version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.DBHost, "db-host", "localhost", "PostgreSQL host")
	flag.IntVar(&cfg.DBPort, "db-port", 5432, "PostgreSQL port")
	flag.StringVar(&cfg.DBUser, "db-user", "pool", "PostgreSQL user")
	flag.StringVar(&cfg.DBPassword, "db-password", "", "PostgreSQL password")
	flag.StringVar(&cfg.DBName, "db-name", "privacypool", "PostgreSQL database name")
	flag.IntVar(&cfg.MaxConns, "db-max-conns", 20, "Maximum PostgreSQL connections")

	flag.StringVar(&cfg.ListenAddr, "listen", "/ip4/0.0.0.0/tcp/9100", "Relay gossip listen address")

	flag.Parse()
	return cfg
}

func run(ctx context.Context, cfg *Config) error {
	fmt.Println("Connecting to database...")
	dbConfig := &storage.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  "disable",
		MaxConns: int32(cfg.MaxConns),
	}

	store, err := storage.NewPostgresStore(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()
	fmt.Println("Database connected.")

	count, root, found, err := store.LatestPosition(ctx)
	if err != nil {
		return fmt.Errorf("load tree state: %w", err)
	}
	var tree *merkletree.Tree
	if found {
		history, err := store.RecentRoots(ctx, merkletree.HistorySize)
		if err != nil {
			return fmt.Errorf("load root history: %w", err)
		}
		tree = merkletree.Load(store, count, root, history)
	} else {
		tree = merkletree.New(store)
	}
	fmt.Printf("Accumulator loaded. Leaves: %d, root: %s\n", tree.Count(), tree.Root().Decimal())

	fmt.Println("Starting relay node...")
	relayCfg := relay.DefaultConfig()
	relayCfg.ListenAddrs = []string{cfg.ListenAddr}

	node, err := relay.NewNode(ctx, relayCfg)
	if err != nil {
		return fmt.Errorf("start relay node: %w", err)
	}
	defer node.Close()
	node.Start()

	fmt.Println("poold started successfully!")
	fmt.Println("Press Ctrl+C to stop.")

	<-ctx.Done()
	fmt.Println("Daemon stopped.")
	return nil
}
