package factory

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
	domainFactory "github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// MarketSettings controls purchases and sales
type MarketSettings struct {
	SellRefundRate        shared.Money
	MaxFactoriesPerPlayer int // 0 means unlimited
}

// Service owns the factory lifecycle outside production and upgrades:
// creation, purchase, sale, removal and admin overrides.
type Service struct {
	factories domainFactory.FactoryRepository
	taxes     *tax.Engine
	ledger    ports.Ledger
	storage   ports.StorageService
	notifier  ports.Notifier
	settings  MarketSettings
	maxLevel  int
	clock     shared.Clock
}

func NewService(
	factories domainFactory.FactoryRepository,
	taxes *tax.Engine,
	ledger ports.Ledger,
	storage ports.StorageService,
	notifier ports.Notifier,
	settings MarketSettings,
	maxLevel int,
	clock shared.Clock,
) *Service {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Service{
		factories: factories,
		taxes:     taxes,
		ledger:    ledger,
		storage:   storage,
		notifier:  notifier,
		settings:  settings,
		maxLevel:  maxLevel,
		clock:     clock,
	}
}

// Create registers a new unowned factory
func (s *Service) Create(ctx context.Context, id, zone string, typ domainFactory.Type, price shared.Money) (*domainFactory.Factory, error) {
	if _, err := s.factories.Get(ctx, id); err == nil {
		return nil, domainFactory.NewFactoryExistsError(id)
	} else if !isNotFound(err) {
		return nil, err
	}

	f, err := domainFactory.NewFactory(id, zone, typ, price, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.factories.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save factory: %w", err)
	}

	common.LoggerFromContext(ctx).InfoContext(ctx, "factory created",
		"factory_id", id, "type", typ, "zone", zone, "price", price.StringFixed(2))
	return f, nil
}

// Remove deletes a factory together with its storage and tax record.
// Paid history (invoices, tax receipts) is kept.
func (s *Service) Remove(ctx context.Context, id string) error {
	if _, err := s.factories.Get(ctx, id); err != nil {
		return err
	}

	if err := s.storage.Clear(ctx, id); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	if err := s.taxes.Forget(ctx, id); err != nil {
		return err
	}
	if err := s.factories.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete factory: %w", err)
	}

	common.LoggerFromContext(ctx).InfoContext(ctx, "factory removed", "factory_id", id)
	return nil
}

// Buy transfers an unowned factory to player for its price
func (s *Service) Buy(ctx context.Context, player shared.PlayerID, id string) (*domainFactory.Factory, error) {
	f, err := s.factories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.IsOwned() {
		return nil, domainFactory.NewAlreadyOwnedError(id)
	}

	if limit := s.settings.MaxFactoriesPerPlayer; limit > 0 {
		owned, err := s.factories.ListByOwner(ctx, player)
		if err != nil {
			return nil, fmt.Errorf("failed to count owned factories: %w", err)
		}
		if len(owned) >= limit {
			return nil, domainFactory.NewFactoryLimitReachedError(player, limit)
		}
	}

	hasFunds, err := s.ledger.HasFunds(ctx, player, f.Price())
	if err != nil {
		return nil, fmt.Errorf("failed to check funds: %w", err)
	}
	if !hasFunds {
		return nil, shared.NewInsufficientFundsError(player, f.Price())
	}
	if err := s.ledger.Withdraw(ctx, player, f.Price()); err != nil {
		return nil, fmt.Errorf("failed to withdraw purchase price: %w", err)
	}

	if err := f.AssignOwner(player, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.factories.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save factory: %w", err)
	}

	common.LoggerFromContext(ctx).InfoContext(ctx, "factory purchased",
		"factory_id", id, "player_id", player.String(), "price", f.Price().StringFixed(2))
	s.notifier.Notify(ctx, player, ports.EventFactoryPurchased, map[string]any{
		"factory_id": id,
		"price":      f.Price().StringFixed(2),
	})
	return f, nil
}

// SaleResult reports what the seller got back
type SaleResult struct {
	FactoryID string
	Refund    shared.Money
}

// Sell releases a factory back to the market. Running production and upgrades are
// cancelled, storage and the tax record are wiped. Refused while taxes are unpaid.
func (s *Service) Sell(ctx context.Context, player shared.PlayerID, id string) (*SaleResult, error) {
	f, err := s.factories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.EnsureOwnedBy(player); err != nil {
		return nil, err
	}

	due, err := s.taxes.Outstanding(ctx, id)
	if err != nil {
		return nil, err
	}
	if due.IsPositive() {
		return nil, domainFactory.NewTaxesOutstandingError(id, due)
	}

	refund := shared.RoundCents(f.Price().Mul(s.settings.SellRefundRate))

	if err := f.ReleaseOwnership(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.factories.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save factory: %w", err)
	}
	if err := s.storage.Clear(ctx, id); err != nil {
		common.LoggerFromContext(ctx).ErrorContext(ctx, "failed to clear storage of sold factory",
			"factory_id", id, "error", err)
	}
	if err := s.taxes.Forget(ctx, id); err != nil {
		common.LoggerFromContext(ctx).ErrorContext(ctx, "failed to drop tax record of sold factory",
			"factory_id", id, "error", err)
	}

	if refund.IsPositive() {
		if err := s.ledger.Deposit(ctx, player, refund); err != nil {
			return nil, fmt.Errorf("failed to deposit sale refund: %w", err)
		}
	}

	common.LoggerFromContext(ctx).InfoContext(ctx, "factory sold",
		"factory_id", id, "player_id", player.String(), "refund", refund.StringFixed(2))
	s.notifier.Notify(ctx, player, ports.EventFactorySold, map[string]any{
		"factory_id": id,
		"refund":     refund.StringFixed(2),
	})
	return &SaleResult{FactoryID: id, Refund: refund}, nil
}

// SetLevel overrides a factory's level (admin)
func (s *Service) SetLevel(ctx context.Context, id string, level int) (*domainFactory.Factory, error) {
	f, err := s.factories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.AdminSetLevel(level, s.maxLevel, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.factories.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save factory: %w", err)
	}

	common.LoggerFromContext(ctx).InfoContext(ctx, "factory level set", "factory_id", id, "level", level)
	return f, nil
}

// SetFastTravel sets the owner's fast-travel anchor; nil clears it
func (s *Service) SetFastTravel(ctx context.Context, player shared.PlayerID, id string, anchor *domainFactory.Location) (*domainFactory.Factory, error) {
	f, err := s.factories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.EnsureOwnedBy(player); err != nil {
		return nil, err
	}

	f.SetAnchor(anchor, s.clock.Now())
	if err := s.factories.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save factory: %w", err)
	}
	return f, nil
}

func isNotFound(err error) bool {
	return shared.CodeOf(err) == domainFactory.CodeFactoryNotFound
}
