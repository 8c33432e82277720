// Command seed loads the furniture catalog and an admin account.
// It is idempotent: existing categories, products and users are kept.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Stock       int
	Category    string
	Image       string
}

var catalog = []seedProduct{
	{"MESA-001", "Mesa de comedor Pampa", "Mesa de roble macizo para seis personas", 420000, 5, "Comedor", "/img/mesa-pampa.jpg"},
	{"SILLA-001", "Silla Belgrano", "Silla tapizada en lino natural", 68000, 24, "Comedor", "/img/silla-belgrano.jpg"},
	{"APAR-001", "Aparador Uspallata", "Aparador de nogal con tres puertas", 310000, 3, "Comedor", "/img/aparador-uspallata.jpg"},
	{"SOFA-001", "Sofá Patagonia", "Sofá de tres cuerpos en tela antimanchas", 560000, 4, "Living", "/img/sofa-patagonia.jpg"},
	{"MESA-002", "Mesa ratona Aconcagua", "Mesa baja de petiribí y hierro", 85000, 10, "Living", "/img/mesa-aconcagua.jpg"},
	{"BIBL-001", "Biblioteca Recoleta", "Biblioteca modular de cinco estantes", 190000, 6, "Living", "/img/biblioteca-recoleta.jpg"},
	{"CAMA-001", "Cama Nahuel", "Cama de dos plazas con respaldo de paraíso", 380000, 4, "Dormitorio", "/img/cama-nahuel.jpg"},
	{"MESA-003", "Mesa de luz Anden", "Mesa de luz con cajón y repisa", 54000, 12, "Dormitorio", "/img/mesa-anden.jpg"},
	{"ESCR-001", "Escritorio Costa", "Escritorio de guatambú con pasacables", 145000, 8, "Oficina", "/img/escritorio-costa.jpg"},
}

func main() {
	var (
		databaseURL   string
		adminEmail    string
		adminPassword string
		fakeCount     int
		logLevel      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminEmail, "admin-email", "admin@storefront.local", "email of the admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password of the admin account (or SEED_ADMIN_PASSWORD env)")
	flag.IntVar(&fakeCount, "fake-products", 0, "number of extra generated products")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Parse()

	logger := config.NewLogger(config.LoggerConfig{Level: logLevel, Format: "console"})

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		logger.Fatal().Msg("database URL is required: set --database-url or DATABASE_URL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("SEED_ADMIN_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminEmail, adminPassword, fakeCount, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}

	logger.Info().Msg("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminEmail, adminPassword string, fakeCount int, logger zerolog.Logger) error {
	pool, err := database.NewPool(ctx, config.DatabaseConfig{
		URL:             databaseURL,
		MaxConnections:  4,
		MinConnections:  1,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	categories := service.NewCategoryService(repository.NewCategoryRepository(pool, logger), logger)
	products := service.NewProductService(repository.NewProductRepository(pool, logger), logger)

	categoryIDs, err := seedCategories(ctx, categories, logger)
	if err != nil {
		return err
	}

	items := append([]seedProduct{}, catalog...)
	items = append(items, fakeProducts(fakeCount, lo.Keys(categoryIDs))...)
	if err := seedProducts(ctx, products, categoryIDs, items, logger); err != nil {
		return err
	}

	if adminPassword == "" {
		logger.Warn().Msg("no admin password given, skipping admin account")
		return nil
	}
	return seedAdmin(ctx, repository.NewUserRepository(pool, logger), adminEmail, adminPassword, logger)
}

func seedCategories(ctx context.Context, svc service.CategoryService, logger zerolog.Logger) (map[string]uuid.UUID, error) {
	names := lo.Uniq(lo.Map(catalog, func(p seedProduct, _ int) string { return p.Category }))

	for _, name := range names {
		_, err := svc.Create(ctx, &model.CategoryRequest{Name: name})
		switch {
		case err == nil:
			logger.Info().Str("category", name).Msg("created category")
		case errors.Is(err, model.ErrDuplicateCategory):
			logger.Debug().Str("category", name).Msg("category exists")
		default:
			return nil, fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}

	existing, err := svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return lo.SliceToMap(existing, func(c model.Category) (string, uuid.UUID) {
		return c.Name, c.ID
	}), nil
}

func seedProducts(
	ctx context.Context,
	svc service.ProductService,
	categoryIDs map[string]uuid.UUID,
	items []seedProduct,
	logger zerolog.Logger,
) error {
	created := 0
	for _, p := range items {
		_, err := svc.Create(ctx, &model.ProductRequest{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       decimal.NewFromInt(p.Price),
			Stock:       p.Stock,
			CategoryID:  categoryIDs[p.Category],
			Image:       p.Image,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, model.ErrDuplicateProduct):
			logger.Debug().Str("product_id", p.ID).Msg("product exists")
		default:
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}

	logger.Info().Int("created", created).Int("total", len(items)).Msg("seeded products")
	return nil
}

// fakeProducts generates demo products spread over the seeded categories.
func fakeProducts(n int, categories []string) []seedProduct {
	if n <= 0 || len(categories) == 0 {
		return nil
	}
	faker := gofakeit.New(uint64(time.Now().UnixNano()))

	return lo.Times(n, func(i int) seedProduct {
		return seedProduct{
			ID:          fmt.Sprintf("DEMO-%04d", i+1),
			Name:        faker.ProductName(),
			Description: faker.ProductDescription(),
			Price:       int64(faker.Number(10, 600)) * 1000,
			Stock:       faker.Number(0, 30),
			Category:    categories[faker.Number(0, len(categories)-1)],
		}
	})
}

func seedAdmin(ctx context.Context, users repository.UserRepository, email, password string, logger zerolog.Logger) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		ID:           uuid.New(),
		FullName:     "Administrador",
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	err = users.Create(ctx, admin)
	switch {
	case err == nil:
		logger.Info().Str("email", admin.Email).Msg("created admin account")
	case errors.Is(err, model.ErrEmailTaken):
		logger.Info().Str("email", admin.Email).Msg("admin account exists")
	default:
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	return nil
}
