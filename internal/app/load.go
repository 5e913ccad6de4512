package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/hostgrid/internal/ctxlog"
	"github.com/vk/hostgrid/internal/dynamic"
	"github.com/vk/hostgrid/internal/ini"
	"github.com/vk/hostgrid/internal/inventory"
)

// Load reads the configured inventory. A failed load leaves any previously
// loaded inventory in place.
func (a *App) Load(ctx context.Context) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading inventory...", "path", a.config.InventoryPath, "source", a.config.Source)

	var (
		inv *inventory.Inventory
		err error
	)
	switch a.config.Source {
	case SourceJSON:
		var opts []inventory.Option
		if a.config.AllowCycles {
			opts = append(opts, inventory.AllowCycles())
		}
		inv, err = dynamic.LoadFile(ctx, a.config.InventoryPath, opts...)
	default:
		var opts []ini.Option
		if a.config.AllowCycles {
			opts = append(opts, ini.AllowCycles())
		}
		if a.config.InventoryPath == "-" {
			inv, err = ini.Parse(ctx, "<stdin>", os.Stdin, opts...)
		} else {
			inv, err = ini.ParseFile(ctx, a.config.InventoryPath, opts...)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}

	if a.config.AllowCycles {
		if err := inv.Validate(); err != nil {
			logger.Warn("Inventory hierarchy is not acyclic.", "error", err)
		}
	}

	a.inv = inv
	logger.Info("Inventory loaded.", "groups", len(inv.Groups()), "hosts", len(inv.Hosts()))
	return nil
}
