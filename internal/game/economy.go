package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-garden/internal/entity"
)

func (w *WorldState) sendInventory(ps *PlayerState) {
	w.sendUI(ps.CharId, InventoryUpdate{
		Type:          TypeInventoryUpdate,
		Inventory:     ps.Inventory.Slots(w.tuning.InventorySlots),
		HeldItemIndex: ps.HeldIndex(),
	})
}

func (w *WorldState) sendCash(ps *PlayerState) {
	w.sendUI(ps.CharId, CashUpdate{Type: TypeCashUpdate, Cash: ps.Cash})
}

// Buy purchases one seed. An empty arg lists the shop.
func (w *WorldState) Buy(ctx context.Context, charId, arg string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}

		if strings.TrimSpace(arg) == "" {
			return &UserError{Message: "Please specify what you want to buy. Available seeds: " + w.catalog.Summary(), Color: ColorInfo}
		}

		_, pt := w.catalog.Resolve(arg)
		if pt == nil {
			return &UserError{Message: "Sorry, that seed is not available for purchase. Available seeds: " + w.catalog.Summary(), Color: ColorInfo}
		}
		if ps.Cash < pt.Cost {
			return userErrorf("Not enough cash! You need %d cash but only have %d cash.", pt.Cost, ps.Cash)
		}
		if len(ps.Inventory) >= w.tuning.InventorySlots {
			return NewUserError("Your inventory is full!")
		}

		ps.Cash -= pt.Cost
		ps.Inventory = append(ps.Inventory, pt.Name)
		slog.InfoContext(ctx, "seed bought", "charId", charId, "seed", pt.Name, "cash", ps.Cash)

		w.sendInventory(ps)
		w.sendCash(ps)
		w.queuePlayerSave(ps)

		effect := w.entities.Spawn(entity.Options{
			Name:       pt.Name,
			ModelURI:   pt.SeedModel,
			ModelScale: pt.SeedScale,
		}, ps.Position.Add(mgl64.Vec3{0, 2, 0}))
		w.entities.DespawnAfter(effect.Id, w.tuning.BuyEffect.Std())

		w.tell(charId, fmt.Sprintf("You bought a %s for %d cash! 🌱 (Growth time: %s seconds)", pt.Name, pt.Cost, seconds(pt.GrowthTime())), ColorSuccess)
		w.tell(charId, fmt.Sprintf("Remaining cash: %d", ps.Cash), ColorInfo)
		w.tell(charId, "Use /hold <slot> to hold an item (e.g. /hold 0)", ColorInfo)
		return nil
	})
}

// Sell sells every harvested crop in the player's inventory.
func (w *WorldState) Sell(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}

		seeds, crops := ps.Inventory.Split()
		if len(crops) == 0 {
			return NewUserError("You don't have any harvested plants to sell!")
		}

		type line struct {
			count int
			name  string
			price int
		}
		var lines []line
		total := 0
		for _, c := range crops.Counts() {
			price := 0
			if pt := w.catalog.ByCrop(c.Name); pt != nil {
				price = pt.SellPrice
			}
			total += price * c.Count
			lines = append(lines, line{count: c.Count, name: c.Name, price: price})
		}

		ps.Cash += total
		if ps.Held != nil {
			if IsSeed(ps.Held.Name) && ps.Held.Index < len(ps.Inventory) {
				// Seeds keep their relative order, so the held slot shifts left by the crops before it.
				kept, _ := ps.Inventory[:ps.Held.Index].Split()
				ps.Held.Index = len(kept)
			} else {
				w.dropHeld(ps)
			}
		}
		ps.Inventory = seeds
		slog.InfoContext(ctx, "crops sold", "charId", charId, "count", len(crops), "earnings", total)

		w.sendInventory(ps)
		w.sendCash(ps)
		w.queuePlayerSave(ps)
		w.sendUI(charId, SellNotification{Type: TypeSellNotification, PlantsSold: len(crops), TotalEarnings: total})

		w.tell(charId, fmt.Sprintf("💰 Sold %d plants for %d cash!", len(crops), total), ColorSuccess)
		for _, l := range lines {
			w.tell(charId, fmt.Sprintf("  %dx %s - %d cash each", l.count, l.name, l.price), ColorSuccess)
		}
		w.tell(charId, fmt.Sprintf("New balance: %d cash", ps.Cash), ColorCash)
		return nil
	})
}

// AddCash grants the test allowance.
func (w *WorldState) AddCash(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}

		amount := w.tuning.AddCashAmount
		ps.Cash += amount
		w.sendCash(ps)
		w.queuePlayerSave(ps)
		w.tell(charId, fmt.Sprintf("You have been given %d cash for testing. New balance: %d", amount, ps.Cash), ColorSuccess)
		return nil
	})
}

// ShowCash reports the player's balance.
func (w *WorldState) ShowCash(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}
		w.tell(charId, fmt.Sprintf("You have %d cash.", ps.Cash), ColorCash)
		return nil
	})
}

// ShowInventory lists the player's items grouped by name.
func (w *WorldState) ShowInventory(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}
		if len(ps.Inventory) == 0 {
			w.tell(charId, "Your inventory is empty.", ColorInfo)
			return nil
		}
		w.tell(charId, "Inventory: "+ps.Inventory.String(), ColorInfo)
		return nil
	})
}
