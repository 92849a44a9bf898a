// Command seed-db loads the catalog, demo accounts and API keys into the
// storefront database. Product files may be plain JSON or gzip-compressed
// (.json.gz), which suits large catalog exports.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/storage/postgres"
)

type productJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Amount    int             `json:"amount"`
	Available bool            `json:"available"`
	Category  string          `json:"category"`
}

type accountJSON struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Admin    bool   `json:"admin"`
}

type apiKeyJSON struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		accountsFile string
		apiKeysFile  string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.json or .json.gz)")
	flag.StringVar(&accountsFile, "accounts-file", "db/seed/accounts.json", "path to accounts JSON file")
	flag.StringVar(&apiKeysFile, "api-keys-file", "db/seed/apikeys.json", "path to API keys JSON file")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, accountsFile, apiKeysFile, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, accountsFile, apiKeysFile, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Accounts must land before API keys reference them; products are
	// independent of both.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return errors.Wrap(seedProducts(gctx, pool, productsFile), "seed products")
	})
	g.Go(func() error {
		if err := seedAccounts(gctx, pool, accountsFile); err != nil {
			return errors.Wrap(err, "seed accounts")
		}
		return errors.Wrap(seedAPIKeys(gctx, pool, apiKeysFile, pepper), "seed api keys")
	})
	return g.Wait()
}

// readSeedFile reads a seed file, transparently decompressing .gz inputs.
func readSeedFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return data, nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	slog.Info("reading products file", slog.String("path", path))

	data, err := readSeedFile(path)
	if err != nil {
		return err
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	const query = `
		INSERT INTO products (id, name, price, amount, available, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			amount = EXCLUDED.amount,
			available = EXCLUDED.available,
			category = EXCLUDED.category`

	for _, p := range products {
		if _, err := pool.Exec(ctx, query, p.ID, p.Name, p.Price, p.Amount, p.Available, p.Category); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
	}

	slog.Info("products seeded", slog.Int("count", len(products)))
	return nil
}

func seedAccounts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	slog.Info("reading accounts file", slog.String("path", path))

	data, err := readSeedFile(path)
	if err != nil {
		return err
	}

	var accounts []accountJSON
	if err := json.Unmarshal(data, &accounts); err != nil {
		return errors.Wrap(err, "parse accounts JSON")
	}

	const query = `
		INSERT INTO accounts (username, full_name, email, phone, address, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			is_admin = EXCLUDED.is_admin`

	for _, a := range accounts {
		if _, err := pool.Exec(ctx, query, a.Username, a.FullName, a.Email, a.Phone, a.Address, a.Admin); err != nil {
			return errors.Wrapf(err, "upsert account %s", a.Username)
		}
	}

	slog.Info("accounts seeded", slog.Int("count", len(accounts)))
	return nil
}

func seedAPIKeys(ctx context.Context, pool *pgxpool.Pool, path, pepper string) error {
	slog.Info("reading api keys file", slog.String("path", path))

	data, err := readSeedFile(path)
	if err != nil {
		return err
	}

	var keys []apiKeyJSON
	if err := json.Unmarshal(data, &keys); err != nil {
		return errors.Wrap(err, "parse api keys JSON")
	}

	const query = `
		INSERT INTO api_keys (id, key_hash, username, is_admin)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash,
			username = EXCLUDED.username,
			is_admin = EXCLUDED.is_admin`

	for _, k := range keys {
		mac := hmac.New(sha256.New, []byte(pepper))
		mac.Write([]byte(k.Key))
		hash := hex.EncodeToString(mac.Sum(nil))

		if _, err := pool.Exec(ctx, query, k.ID, hash, k.Username, k.Admin); err != nil {
			return errors.Wrapf(err, "upsert api key %s", k.ID)
		}
	}

	slog.Info("api keys seeded", slog.Int("count", len(keys)))
	return nil
}
