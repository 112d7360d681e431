package node

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"

	"github.com/jhuhnke/solana-walrus/api"
	"github.com/jhuhnke/solana-walrus/db"
	"github.com/jhuhnke/solana-walrus/gateway"
	"github.com/jhuhnke/solana-walrus/node/config"
	"github.com/jhuhnke/solana-walrus/saga"
	"github.com/jhuhnke/solana-walrus/wallet"
)

var log = logging.Logger("node")

const (
	configFile = "config.toml"
	dbFile     = "walrus-bridge.db"
	walletDir  = "wallet"
)

// Node is the local state of the client: its configuration, the saga
// database and the payer keys.
type Node struct {
	Dir    string
	Config *config.Config
	DB     *sql.DB
	Wallet *wallet.Wallet
}

// Init creates the repo directory with a default config for network, and
// generates a payer key if the wallet holds none.
func Init(dir string, network string) (string, error) {
	dir, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("getting homedir: %w", err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	cfgPath := filepath.Join(dir, configFile)
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		cfg := config.DefaultConfig()
		if network != "" {
			cfg.Network = network
		}
		if err := cfg.Validate(); err != nil {
			return "", err
		}
		b, err := config.ConfigUpdate(cfg, config.DefaultConfig(), true)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(cfgPath, b, 0644); err != nil {
			return "", fmt.Errorf("writing config: %w", err)
		}
		log.Infow("wrote config", "path", cfgPath, "network", cfg.Network)
	}

	w, err := wallet.NewWallet(filepath.Join(dir, walletDir))
	if err != nil {
		return "", err
	}
	addrs, err := w.List()
	if err != nil {
		return "", err
	}
	if len(addrs) > 0 {
		return addrs[0], nil
	}
	return w.Generate()
}

func Setup(dir string) (*Node, error) {
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("getting homedir: %w", err)
	}

	_, err = os.Stat(dir)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil, errors.New("repo dir doesn't exist. run `walrus-bridge init` first")
	}

	raw, err := config.FromFile(filepath.Join(dir, configFile), config.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := raw.(*config.Config)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sqldb, err := db.SqlDB(filepath.Join(dir, dbFile))
	if err != nil {
		return nil, err
	}
	if err := db.CreateAllTables(context.Background(), sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	w, err := wallet.NewWallet(filepath.Join(dir, walletDir))
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	return &Node{
		Dir:    dir,
		Config: cfg,
		DB:     sqldb,
		Wallet: w,
	}, nil
}

// Saga builds the upload saga of the active network, talking to gapi.
func (n *Node) Saga(gapi api.Gateway) (*saga.Saga, error) {
	scfg, err := saga.ConfigFromNode(n.Config)
	if err != nil {
		return nil, err
	}
	nc, err := n.Config.ActiveNetwork()
	if err != nil {
		return nil, err
	}
	gw := gateway.New(gapi, gateway.Config{
		BridgedToken: nc.BridgedToken,
		StorageToken: nc.StorageToken,
	})
	return saga.New(scfg, n.DB, gw.Clients(n.Wallet))
}

// GetProvidedOrDefaultPayer returns provided if the wallet holds its key, or
// the only payer key of the wallet.
func (n *Node) GetProvidedOrDefaultPayer(provided string) (string, error) {
	if provided != "" {
		if _, err := n.Wallet.SourceSigner(provided); err != nil {
			return "", fmt.Errorf("couldn't find payer %s locally: %w", provided, err)
		}
		return provided, nil
	}

	addrs, err := n.Wallet.List()
	if err != nil {
		return "", err
	}
	switch len(addrs) {
	case 0:
		return "", errors.New("the wallet holds no payer key. run `walrus-bridge wallet new` first")
	case 1:
		return addrs[0], nil
	default:
		return "", fmt.Errorf("the wallet holds %d payer keys, pick one with --payer", len(addrs))
	}
}

func (n *Node) Close() error {
	return n.DB.Close()
}
