package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

// newRepoDB opens a throwaway on-disk sqlite database and migrates the given
// models. It is shared by the repo tests in this package.
func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateProvider_PersistsAndSetsFields(t *testing.T) {
	db := newRepoDB(t, &domain.Provider{})

	start := time.Now().UTC().Add(-time.Minute)
	p, err := CreateProvider(context.Background(), db, "u1", "Frutas del Sur", "5491155550001")
	if err != nil {
		t.Fatalf("CreateProvider: %v", err)
	}
	if p.ID == "" || p.UserID != "u1" || p.Phone != "5491155550001" {
		t.Fatalf("unexpected Provider fields: %+v", p)
	}
	if p.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt seems unset: %v", p.CreatedAt)
	}

	var got domain.Provider
	if err := db.First(&got, "id = ?", p.ID).Error; err != nil {
		t.Fatalf("load created provider: %v", err)
	}
	if got.Name != "Frutas del Sur" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestGetProvider_ScopedToOwner(t *testing.T) {
	db := newRepoDB(t, &domain.Provider{})

	p, err := CreateProvider(context.Background(), db, "owner", "Lacteos SA", "5491155550002")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := GetProvider(context.Background(), db, p.ID, "owner"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if _, err := GetProvider(context.Background(), db, p.ID, "stranger"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
}

func TestGetProviderByPhone_MostRecentWins(t *testing.T) {
	db := newRepoDB(t, &domain.Provider{})

	older := domain.Provider{ID: "p1", UserID: "u1", Name: "Old", Phone: "549111", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := domain.Provider{ID: "p2", UserID: "u2", Name: "New", Phone: "549111", CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	for _, p := range []domain.Provider{older, newer} {
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed %s: %v", p.ID, err)
		}
	}

	got, err := GetProviderByPhone(context.Background(), db, "549111")
	if err != nil {
		t.Fatalf("GetProviderByPhone: %v", err)
	}
	if got.ID != "p2" {
		t.Fatalf("expected most recent provider p2, got %s", got.ID)
	}
}

func TestGetProviderByPhone_Missing(t *testing.T) {
	db := newRepoDB(t, &domain.Provider{})
	if _, err := GetProviderByPhone(context.Background(), db, "000"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProvider_NotFoundAndSuccess(t *testing.T) {
	db := newRepoDB(t, &domain.Provider{})

	if err := UpdateProvider(context.Background(), db, "missing", "u1", "n", "p"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	p, _ := CreateProvider(context.Background(), db, "u1", "Antes", "549000")
	if err := UpdateProvider(context.Background(), db, p.ID, "u1", "Despues", "549999"); err != nil {
		t.Fatalf("UpdateProvider: %v", err)
	}
	var got domain.Provider
	if err := db.First(&got, "id = ?", p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "Despues" || got.Phone != "549999" {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestDeleteProvider_SoftDeletes(t *testing.T) {
	db := newRepoDB(t, &domain.Provider{})

	p, _ := CreateProvider(context.Background(), db, "u1", "Borrar", "549123")
	if err := DeleteProvider(context.Background(), db, p.ID, "u1"); err != nil {
		t.Fatalf("DeleteProvider: %v", err)
	}
	if _, err := GetProvider(context.Background(), db, p.ID, "u1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected deleted provider to be invisible, got %v", err)
	}
	// Row is retained under soft delete.
	var n int64
	if err := db.Unscoped().Model(&domain.Provider{}).Where("id = ?", p.ID).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("expected soft-deleted row to remain, n=%d err=%v", n, err)
	}

	if err := DeleteProvider(context.Background(), db, p.ID, "u1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListProvidersPage_OrderAndFilter(t *testing.T) {
	db := newRepoDB(t, &domain.Provider{})

	for _, p := range []domain.Provider{
		{ID: "a", UserID: "u1", Name: "Carnes", Phone: "1"},
		{ID: "b", UserID: "u1", Name: "Almacen", Phone: "2"},
		{ID: "c", UserID: "u2", Name: "Otro", Phone: "3"},
	} {
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	total, err := CountProviders(context.Background(), db, "u1")
	if err != nil || total != 2 {
		t.Fatalf("CountProviders: total=%d err=%v", total, err)
	}

	page, err := ListProvidersPage(context.Background(), db, "u1", 0, 10)
	if err != nil {
		t.Fatalf("ListProvidersPage: %v", err)
	}
	if len(page) != 2 || page[0].Name != "Almacen" || page[1].Name != "Carnes" {
		t.Fatalf("unexpected page order: %+v", page)
	}
}
