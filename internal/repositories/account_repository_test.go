package repositories

import (
	"context"
	"errors"
	"testing"

	"roteiro/internal/infra/infratest"
	dbm "roteiro/internal/models/db_models"
	"roteiro/pkg/utils"
)

func TestAccountRepository_FindByUsername(t *testing.T) {
	db := infratest.NewDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()
	created := seedAccount(t, repo, "ana@example.com")

	got, err := repo.FindByUsername(ctx, "ana@example.com")
	if err != nil || got == nil || got.ID != created.ID {
		t.Fatalf("FindByUsername: %+v (%v)", got, err)
	}

	missing, err := repo.FindByUsername(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for unknown username, got %+v (%v)", missing, err)
	}
}

func TestAccountRepository_UniqueUsername(t *testing.T) {
	db := infratest.NewDB(t)
	repo := NewAccountRepository(db)
	seedAccount(t, repo, "ana@example.com")

	err := repo.Insert(context.Background(), &dbm.Account{Username: "ana@example.com", PasswordHash: "x"})
	if err == nil {
		t.Fatalf("expected unique violation")
	}
}

func TestAccountRepository_DeleteCascadesToTrips(t *testing.T) {
	db := infratest.NewDB(t)
	accounts := NewAccountRepository(db)
	trips := NewTripRepository(db)
	ctx := context.Background()

	ana := seedAccount(t, accounts, "ana@example.com")
	bia := seedAccount(t, accounts, "bia@example.com")
	seedTrip(t, trips, ana.ID, dbm.TripItem{DayKey: "Dia 1", Name: "A", Time: "08:00"})
	seedTrip(t, trips, ana.ID)
	biaTrip := seedTrip(t, trips, bia.ID, dbm.TripItem{DayKey: "Dia 1", Name: "B", Time: "08:00"})

	if err := accounts.Delete(ctx, ana.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var tripCount, itemCount int64
	db.Model(&dbm.Trip{}).Count(&tripCount)
	db.Model(&dbm.TripItem{}).Count(&itemCount)
	if tripCount != 1 || itemCount != 1 {
		t.Fatalf("expected only bia's trip and item, got %d trips %d items", tripCount, itemCount)
	}
	if got, _ := trips.FindTripByAccount(ctx, bia.ID, biaTrip.ID); got == nil {
		t.Fatalf("bia's trip must survive")
	}
	if err := accounts.Delete(ctx, ana.ID); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
