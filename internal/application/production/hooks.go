package production

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// HookRewardName is the completion hook that pays a recipe's reward to the owner
const HookRewardName = "reward"

// HookContext describes the completion a hook runs for
type HookContext struct {
	Factory *factory.Factory
	Owner   shared.PlayerID
	Recipe  *factory.Recipe
	Task    *factory.ProductionTask
}

// Hook is a one-shot side effect run after a task's outputs are credited
type Hook func(ctx context.Context, hc HookContext) error

// Hooks maps hook names used in recipe definitions to implementations
type Hooks struct {
	mu    sync.RWMutex
	hooks map[string]Hook
}

func NewHooks() *Hooks {
	return &Hooks{hooks: make(map[string]Hook)}
}

// Register adds a named hook
func (h *Hooks) Register(name string, hook Hook) error {
	if name == "" || hook == nil {
		return fmt.Errorf("hook name and implementation are required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.hooks[name]; exists {
		return fmt.Errorf("hook %s already registered", name)
	}
	h.hooks[name] = hook
	return nil
}

// Names returns the registered hook names in order
func (h *Hooks) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.hooks))
	for name := range h.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named hook
func (h *Hooks) Run(ctx context.Context, name string, hc HookContext) error {
	h.mu.RLock()
	hook, ok := h.hooks[name]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("unknown completion hook %q", name)
	}
	return hook(ctx, hc)
}

// RewardHook deposits the recipe reward into the owner's balance
func RewardHook(ledger ports.Ledger, notifier ports.Notifier) Hook {
	return func(ctx context.Context, hc HookContext) error {
		if hc.Recipe == nil || !hc.Recipe.Reward.IsPositive() {
			return nil
		}
		if err := ledger.Deposit(ctx, hc.Owner, hc.Recipe.Reward); err != nil {
			return fmt.Errorf("failed to pay reward for %s: %w", hc.Recipe.ID, err)
		}
		notifier.Notify(ctx, hc.Owner, ports.EventRewardPaid, map[string]any{
			"factory_id": hc.Factory.ID(),
			"recipe_id":  hc.Recipe.ID,
			"amount":     hc.Recipe.Reward.StringFixed(2),
		})
		return nil
	}
}
