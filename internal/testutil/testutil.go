package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/app"
	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/notify"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database/sqlite"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB       *sqlx.DB
	UseCases *app.UseCases
	Router   *gin.Engine
	Events   *Recorder
	T        *testing.T
}

// SetupTestDB opens a migrated sqlite database in a temporary directory.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlite.NewSQLite(filepath.Join(t.TempDir(), "pricing.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// NewTestEnv wires every use case and route over a fresh database.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	db := SetupTestDB(t)
	rec := &Recorder{}
	ucs := app.NewUseCases(app.Infra{DB: db, Notifier: rec, Location: time.UTC}, logger.NewNopLogger())

	r := SetupRouter()
	ucs.RegisterRoutes(r.Group("/api/v1"), logger.NewNopLogger())

	return &TestEnv{DB: db, UseCases: ucs, Router: r, Events: rec, T: t}
}

// SetupRouter creates a gin test router with the actor middleware
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery(), auth.ActorMiddleware())
	return r
}

// DoRequest executes an HTTP request against the test router as userID.
func DoRequest(r *gin.Engine, method, path string, body interface{}, userID string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.HeaderUserID, userID)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON envelope into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// Recorder is a notify.Publisher that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *Recorder) Publish(_ context.Context, evt notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *Recorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of type t were published.
func (r *Recorder) Count(t notify.EventType) int {
	n := 0
	for _, e := range r.Events() {
		if e.Type == t {
			n++
		}
	}
	return n
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func DecPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// SeedSupplier creates a supplier
func SeedSupplier(t *testing.T, db *sqlx.DB, id, nickname string, active bool) *model.Supplier {
	t.Helper()
	s := &model.Supplier{ID: id, Nickname: nickname, IsActive: active}
	query := db.Rebind(`INSERT INTO suppliers (id, nickname, is_active) VALUES (?, ?, ?)`)
	if _, err := db.Exec(query, s.ID, s.Nickname, s.IsActive); err != nil {
		t.Fatalf("Failed to seed supplier: %v", err)
	}
	return s
}

// SeedVariant creates a product variant with the given unit configuration.
func SeedVariant(t *testing.T, db *sqlx.DB, id, name string, cfg unit.Config) *model.ProductVariant {
	t.Helper()
	v := &model.ProductVariant{
		ID:               id,
		ProductID:        "product-" + id,
		VariantName:      name,
		SaleUnit:         cfg.SaleUnit,
		PurchaseUnit:     cfg.PurchaseUnit,
		ConversionFactor: cfg.ConversionFactor,
		IsActive:         true,
		UpdatedAt:        time.Now().UTC(),
	}
	query := db.Rebind(`INSERT INTO product_variants
		(id, product_id, variant_name, sale_unit, purchase_unit, conversion_factor, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := db.Exec(query, v.ID, v.ProductID, v.VariantName, v.SaleUnit, v.PurchaseUnit, v.ConversionFactor, v.IsActive, v.UpdatedAt); err != nil {
		t.Fatalf("Failed to seed variant: %v", err)
	}
	return v
}

// SeedSession creates a session directly in the given status.
func SeedSession(t *testing.T, db *sqlx.DB, dateKey string, status model.SessionStatus) *model.PurchaseSession {
	t.Helper()
	now := time.Now().UTC()
	s := &model.PurchaseSession{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		DateKey:   dateKey,
		Status:    status,
		CreatedBy: "seed",
	}
	query := db.Rebind(`INSERT INTO purchase_sessions (id, date_key, status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := db.Exec(query, s.ID, s.DateKey, s.Status, s.CreatedBy, s.CreatedAt, s.UpdatedAt); err != nil {
		t.Fatalf("Failed to seed session: %v", err)
	}
	return s
}

// SeedLot appends a lot. Zero ID and PurchasedAt are filled in.
func SeedLot(t *testing.T, db *sqlx.DB, l model.PurchaseLot) *model.PurchaseLot {
	t.Helper()
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.PurchasedAt.IsZero() {
		l.PurchasedAt = time.Now().UTC()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = l.PurchasedAt
	}
	if l.PurchasedBy == "" {
		l.PurchasedBy = "seed"
	}
	query := `INSERT INTO purchase_lots (id, session_id, variant_id, supplier_id, quantity, unit_cost, purchase_unit,
		measured_weight, weighed_at, purchased_by, purchased_at, created_at)
		VALUES (:id, :session_id, :variant_id, :supplier_id, :quantity, :unit_cost, :purchase_unit,
		:measured_weight, :weighed_at, :purchased_by, :purchased_at, :created_at)`
	if _, err := db.NamedExec(query, &l); err != nil {
		t.Fatalf("Failed to seed lot: %v", err)
	}
	return &l
}

// SeedItem adds a PENDING item to a session.
func SeedItem(t *testing.T, db *sqlx.DB, sessionID, variantID string) *model.SessionItem {
	t.Helper()
	now := time.Now().UTC()
	it := &model.SessionItem{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		SessionID: sessionID,
		VariantID: variantID,
		Origin:    model.OriginPlanned,
		State:     model.ItemPending,
	}
	query := db.Rebind(`INSERT INTO session_items (id, session_id, variant_id, origin, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := db.Exec(query, it.ID, it.SessionID, it.VariantID, it.Origin, it.State, it.CreatedAt, it.UpdatedAt); err != nil {
		t.Fatalf("Failed to seed item: %v", err)
	}
	return it
}
