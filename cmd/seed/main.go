// Package main provides a tool to seed the database with a starter paint
// collection.
//
// This creates a small set of realistic watercolor and gouache records plus
// a filled palette, so list, search, and palette features have something to
// show on a fresh install.
//
// Usage:
//
//	DB_PATH=~/Swatchbook/data/db go run ./cmd/seed
//	DB_PATH=~/Swatchbook/data/db go run ./cmd/seed --wipe  # Clear paints first
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

var wipe = flag.Bool("wipe", false, "Remove all existing paints before seeding")

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "Swatchbook", "data", "db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	if *wipe {
		removed, err := s.ClearPaints()
		if err != nil {
			log.Fatalf("Failed to clear paints: %v", err)
		}
		fmt.Printf("Removed %d existing paints\n", removed)
	}

	paints := starterPaints()
	for _, p := range paints {
		if err := s.CreatePaint(p); err != nil {
			log.Fatalf("Failed to create paint %q: %v", p.Name, err)
		}
		fmt.Printf("Created paint %d: %s %s\n", p.ID, p.Brand, p.Name)
	}

	palette := &domain.Palette{Name: "Everyday Dozen", Slots: 12}
	if err := s.CreatePalette(palette); err != nil {
		log.Fatalf("Failed to create palette: %v", err)
	}
	fmt.Printf("Created palette %d: %s (%d slots)\n", palette.ID, palette.Name, palette.Slots)

	// Fill the first slots with the owned paints.
	slot := 0
	for _, p := range paints {
		if p.Status != domain.StatusOwned || slot >= palette.Slots {
			continue
		}
		id := p.ID
		if _, err := s.SetSlotPaint(palette.ID, slot, &id); err != nil {
			log.Fatalf("Failed to assign slot %d: %v", slot, err)
		}
		slot++
	}
	fmt.Printf("Assigned %d slots\n", slot)

	count, err := s.CountPaints()
	if err != nil {
		log.Fatalf("Failed to count paints: %v", err)
	}
	fmt.Printf("\nDone. Database now holds %d paints.\n", count)
}

func starterPaints() []*domain.Paint {
	return []*domain.Paint{
		{
			Brand:  "Winsor & Newton",
			Line:   "Professional Watercolour",
			Name:   "French Ultramarine",
			Code:   "263",
			Medium: domain.MediumWatercolor,
			Status: domain.StatusOwned,
			Tags:   []string{"granulating", "transparent"},
			Swatch: "#1A3A8F",
		},
		{
			Brand:  "Winsor & Newton",
			Line:   "Professional Watercolour",
			Name:   "Burnt Sienna",
			Code:   "074",
			Medium: domain.MediumWatercolor,
			Status: domain.StatusOwned,
			Tags:   []string{"transparent"},
			Swatch: "#8A3B12",
		},
		{
			Brand:  "Daniel Smith",
			Line:   "Extra Fine Watercolor",
			Name:   "Quinacridone Gold",
			Code:   "PO48",
			Medium: domain.MediumWatercolor,
			Status: domain.StatusOwned,
			Tags:   []string{"transparent", "staining"},
			Swatch: "#C2841A",
		},
		{
			Brand:  "Daniel Smith",
			Line:   "Extra Fine Watercolor",
			Name:   "Sodalite Genuine",
			Code:   "PrimaTek",
			Medium: domain.MediumWatercolor,
			Status: domain.StatusOwned,
			Tags:   []string{"granulating"},
			Swatch: "#2B3042",
		},
		{
			Brand:  "Holbein",
			Line:   "Artists' Gouache",
			Name:   "Permanent White",
			Code:   "G701",
			Medium: domain.MediumGouache,
			Status: domain.StatusOwned,
			Swatch: "#F5F3EE",
		},
		{
			Brand:  "Pébéo",
			Line:   "Studio Gouache",
			Name:   "Primary Yellow",
			Medium: domain.MediumGouache,
			Status: domain.StatusEmpty,
			Notes:  "Tube split at the crimp, replace.",
			Swatch: "#F3C300",
		},
		{
			Brand:  "Schmincke",
			Line:   "Horadam",
			Name:   "Helio Turquoise",
			Code:   "475",
			Medium: domain.MediumWatercolor,
			Status: domain.StatusWishlist,
			Swatch: "#00937F",
		},
	}
}
