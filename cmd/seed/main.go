package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"foodcatalog/internal/app"
	"foodcatalog/internal/config"
	"foodcatalog/internal/domain/food"
	"foodcatalog/internal/logging"
)

func str(s string) *string { return &s }
func stars(f float64) *float64 { return &f }

var menu = []food.CreateFoodRequest{
	{Name: "Pizza Margherita", Type: "Pizza", Price: 12, Description: str("Tomato, mozzarella and fresh basil"), EstimatedTime: 15, Image: str("pizza-margherita.jpg"), Stars: stars(4.6)},
	{Name: "Pizza Diavola", Type: "Pizza", Price: 14, Description: str("Spicy salami with chili oil"), EstimatedTime: 15, Image: str("pizza-diavola.jpg"), Stars: stars(4.4)},
	{Name: "Sushi Roll", Type: "Sushi", Price: 18, Description: str("Salmon, avocado and cucumber"), EstimatedTime: 20, Image: str("sushi-roll.jpg"), Stars: stars(4.8)},
	{Name: "Spicy Chicken Wings", Type: "Chicken", Price: 9, Description: str("Crispy wings tossed in hot sauce"), EstimatedTime: 25, Image: str("spicy-chicken-wings.jpg"), Stars: stars(4.2)},
	{Name: "Pad Thai", Type: "Noodles", Price: 11, Description: str("Rice noodles, peanuts and tamarind"), EstimatedTime: 18, Stars: stars(4.5)},
	{Name: "Caesar Salad", Type: "Salad", Price: 8, Description: str("Romaine, parmesan and croutons"), EstimatedTime: 10},
	{Name: "Steamed Rice", Type: "Sides", Price: 3, EstimatedTime: 5},
	{Name: "Tiramisu", Type: "Dessert", Price: 6, Description: str("Coffee soaked ladyfingers and mascarpone"), EstimatedTime: 5, Image: str("tiramisu.jpg"), Stars: stars(4.9)},
}

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeStore(ctx); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	mutations := food.NewMutationService(store)
	created, skipped := 0, 0
	for _, req := range menu {
		if _, err := mutations.Create(ctx, req); err != nil {
			if food.IsValidation(err) {
				slog.Info("skipping food", "name", req.Name, "reason", err)
				skipped++
				continue
			}
			return fmt.Errorf("create %q: %w", req.Name, err)
		}
		created++
	}

	slog.Info("seed complete", "created", created, "skipped", skipped)
	return nil
}
