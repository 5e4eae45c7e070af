// Package app wires repositories, use cases and HTTP handlers over a single database handle.
package app

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-pricing-service/config"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	catH "github.com/fekuna/omnipos-pricing-service/internal/catalog/handler"
	catRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/catalog/repository"
	catUCPkg "github.com/fekuna/omnipos-pricing-service/internal/catalog/usecase"
	"github.com/fekuna/omnipos-pricing-service/internal/item"
	itemH "github.com/fekuna/omnipos-pricing-service/internal/item/handler"
	itemRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/item/repository"
	itemUCPkg "github.com/fekuna/omnipos-pricing-service/internal/item/usecase"
	"github.com/fekuna/omnipos-pricing-service/internal/lot"
	lotH "github.com/fekuna/omnipos-pricing-service/internal/lot/handler"
	lotRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/lot/repository"
	lotUCPkg "github.com/fekuna/omnipos-pricing-service/internal/lot/usecase"
	"github.com/fekuna/omnipos-pricing-service/internal/notify"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database/sqlite"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/search"
	"github.com/fekuna/omnipos-pricing-service/internal/pricing"
	pricingH "github.com/fekuna/omnipos-pricing-service/internal/pricing/handler"
	pricingRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/pricing/repository"
	pricingUCPkg "github.com/fekuna/omnipos-pricing-service/internal/pricing/usecase"
	"github.com/fekuna/omnipos-pricing-service/internal/session"
	sessionH "github.com/fekuna/omnipos-pricing-service/internal/session/handler"
	sessionRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/session/repository"
	sessionUCPkg "github.com/fekuna/omnipos-pricing-service/internal/session/usecase"
	"github.com/fekuna/omnipos-pricing-service/internal/setting"
	settingH "github.com/fekuna/omnipos-pricing-service/internal/setting/handler"
	settingRepoPkg "github.com/fekuna/omnipos-pricing-service/internal/setting/repository"
	settingUCPkg "github.com/fekuna/omnipos-pricing-service/internal/setting/usecase"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Infra holds the shared infrastructure. Cache and ES may be nil.
type Infra struct {
	DB       *sqlx.DB
	Cache    *cache.RedisClient
	ES       *search.Client
	Notifier notify.Publisher
	Location *time.Location
}

type UseCases struct {
	Session session.UseCase
	Item    item.UseCase
	Lot     lot.UseCase
	Pricing pricing.UseCase
	Setting setting.UseCase
	Catalog catalog.UseCase
}

// OpenDB connects with the configured driver.
func OpenDB(cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.Database.Driver {
	case database.DriverSQLite:
		return sqlite.NewSQLite(cfg.Database.SQLitePath)
	case database.DriverPostgres, "postgres":
		return postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func NewUseCases(in Infra, log logger.ZapLogger) *UseCases {
	notifier := in.Notifier
	if notifier == nil {
		notifier = notify.NewNopPublisher()
	}

	// Repositories
	sessionRepo := sessionRepoPkg.NewPGRepository(in.DB)
	itemRepo := itemRepoPkg.NewPGRepository(in.DB)
	lotRepo := lotRepoPkg.NewPGRepository(in.DB)
	pricingRepo := pricingRepoPkg.NewPGRepository(in.DB)
	settingRepo := settingRepoPkg.NewPGRepository(in.DB)
	catalogRepo := catRepoPkg.NewPGRepository(in.DB)

	// Use cases; the pricing engine comes first since the others reprice through it
	pricingUC := pricingUCPkg.NewPricingUseCase(pricingUCPkg.Deps{
		Repo:        pricingRepo,
		LotRepo:     lotRepo,
		CatalogRepo: catalogRepo,
		SessionRepo: sessionRepo,
		SettingRepo: settingRepo,
		Notifier:    notifier,
		Cache:       in.Cache,
		ES:          in.ES,
	}, log)

	return &UseCases{
		Pricing: pricingUC,
		Session: sessionUCPkg.NewSessionUseCase(sessionRepo, pricingUC, notifier, in.Location, log),
		Item:    itemUCPkg.NewItemUseCase(itemRepo, sessionRepo, catalogRepo, lotRepo, pricingUC, notifier, log),
		Lot:     lotUCPkg.NewLotUseCase(lotRepo, sessionRepo, pricingUC, log),
		Setting: settingUCPkg.NewSettingUseCase(settingRepo, sessionRepo, pricingUC, log),
		Catalog: catUCPkg.NewCatalogUseCase(catalogRepo, lotRepo, pricingUC, log),
	}
}

// RegisterRoutes mounts every HTTP handler under rg.
func (u *UseCases) RegisterRoutes(rg *gin.RouterGroup, log logger.ZapLogger) {
	sessionH.NewSessionHandler(u.Session, log).RegisterRoutes(rg)
	itemH.NewItemHandler(u.Item, log).RegisterRoutes(rg)
	lotH.NewLotHandler(u.Lot, log).RegisterRoutes(rg)
	pricingH.NewPricingHandler(u.Pricing, log).RegisterRoutes(rg)
	settingH.NewSettingHandler(u.Setting, log).RegisterRoutes(rg)
	catH.NewCatalogHandler(u.Catalog, log).RegisterRoutes(rg)
}
