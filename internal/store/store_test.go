package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"coutloa/internal/models"
)

func TestMemory_AllerRetour(t *testing.T) {
	s := NewMemory(0)
	ctx := context.Background()

	cfg := models.LeaseConfig{Deal: models.DealParams{Months: 37, MonthlyRent: 189}}
	saved, err := s.Save(ctx, "e-208", cfg)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("id vide")
	}

	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "e-208" || got.Config.Deal.Months != 37 {
		t.Errorf("devis relu inattendu: %+v", got)
	}
}

func TestMemory_Introuvable(t *testing.T) {
	s := NewMemory(0)
	if _, err := s.Get(context.Background(), "nexiste-pas"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("attendu ErrNotFound, obtenu %v", err)
	}
}

func TestMemory_Suppression(t *testing.T) {
	s := NewMemory(0)
	ctx := context.Background()

	saved, err := s.Save(ctx, "temp", models.LeaseConfig{Deal: models.DealParams{Months: 12}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("seconde suppression: attendu ErrNotFound, obtenu %v", err)
	}
}

func TestMemory_Expiration(t *testing.T) {
	s := NewMemory(time.Nanosecond)
	ctx := context.Background()

	saved, err := s.Save(ctx, "ephemere", models.LeaseConfig{Deal: models.DealParams{Months: 12}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := s.Get(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("devis expiré encore servi: %v", err)
	}
}
