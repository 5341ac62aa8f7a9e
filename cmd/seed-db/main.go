package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vkarpenko/mini-crm/internal/auth"
	"github.com/vkarpenko/mini-crm/internal/domain/contact"
	"github.com/vkarpenko/mini-crm/internal/domain/organization"
	"github.com/vkarpenko/mini-crm/internal/domain/product"
	"github.com/vkarpenko/mini-crm/internal/domain/user"
	"github.com/vkarpenko/mini-crm/internal/repository"
)

type catalogJSON struct {
	Organizations []struct {
		Name     string `json:"name"`
		Address  string `json:"address"`
		GSTNo    string `json:"gst_no"`
		Contacts []struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Email     string `json:"email"`
			Phone     string `json:"phone"`
		} `json:"contacts"`
	} `json:"organizations"`
	Products []struct {
		Name         string                     `json:"name"`
		SKU          string                     `json:"sku"`
		BasePrice    decimal.Decimal            `json:"base_price"`
		OfferPercent decimal.Decimal            `json:"offer_percent"`
		Sizes        map[string]decimal.Decimal `json:"sizes"`
	} `json:"products"`
}

func main() {
	var (
		databaseURL   string
		catalogFile   string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to seed catalog JSON file")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or CRM_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("CRM_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or CRM_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedAdmin(ctx, repository.NewUserRepository(pool), adminPassword); err != nil {
		return errors.Wrap(err, "seed admin user")
	}

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	return nil
}

// seedAdmin creates (or refreshes) the admin account. The upsert keyed on
// username makes re-running the seed safe.
func seedAdmin(ctx context.Context, users *repository.UserRepository, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	admin := &user.User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         user.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	slog.Info("seeded admin user", slog.Int64("id", admin.ID))
	return nil
}

// seedCatalog loads the demo organizations, contacts and products. Products
// and size prices upsert on their natural keys; organizations have no unique
// key, so they are only seeded into an empty table.
func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	orgRepo := repository.NewOrganizationRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	existing, err := orgRepo.Count(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		slog.Info("organizations already present, skipping", slog.Int64("count", existing))
	} else {
		for _, o := range catalog.Organizations {
			org := &organization.Organization{Name: o.Name, Address: o.Address, GSTNo: o.GSTNo}
			if err := orgRepo.Create(ctx, org); err != nil {
				return errors.Wrapf(err, "create organization %q", o.Name)
			}
			for _, c := range o.Contacts {
				err := contactRepo.Create(ctx, &contact.Contact{
					FirstName:      c.FirstName,
					LastName:       c.LastName,
					Email:          c.Email,
					Phone:          c.Phone,
					OrganizationID: org.ID,
				})
				if err != nil && !errors.Is(err, contact.ErrDuplicateEmail) {
					return errors.Wrapf(err, "create contact %q", c.Email)
				}
			}
			slog.Info("seeded organization",
				slog.String("name", o.Name),
				slog.Int("contacts", len(o.Contacts)),
			)
		}
	}

	for _, p := range catalog.Products {
		prod := &product.Product{
			Name:         p.Name,
			SKU:          p.SKU,
			BasePrice:    p.BasePrice,
			OfferPercent: p.OfferPercent,
		}
		if err := productRepo.UpsertBySKU(ctx, prod); err != nil {
			return errors.Wrapf(err, "upsert product %q", p.SKU)
		}
		for size, price := range p.Sizes {
			err := productRepo.UpsertSizePrice(ctx, &product.SizePrice{
				ProductID: prod.ID,
				SizeName:  size,
				Price:     price,
			})
			if err != nil {
				return errors.Wrapf(err, "upsert size price (%s, %s)", p.SKU, size)
			}
		}
		slog.Info("seeded product", slog.String("sku", p.SKU), slog.String("name", p.Name))
	}

	return nil
}
