package inmemory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Host stands in for the game server services the engine talks to: the economy
// ledger, labor, research, factory storage and achievement progress. Everything
// lives in memory and can be snapshotted to a YAML file.
type Host struct {
	mu sync.Mutex

	balances map[shared.PlayerID]shared.Money
	labor    map[string]LaborAssignment
	research map[shared.PlayerID]map[buff.Key]int
	inputs   map[string]map[string]int
	outputs  map[string]map[string]int
	progress map[shared.PlayerID]map[string]int
}

// LaborAssignment describes the workers at one factory
type LaborAssignment struct {
	Workers       int
	TimeReduction float64
	Wage          shared.Money
}

func NewHost() *Host {
	return &Host{
		balances: make(map[shared.PlayerID]shared.Money),
		labor:    make(map[string]LaborAssignment),
		research: make(map[shared.PlayerID]map[buff.Key]int),
		inputs:   make(map[string]map[string]int),
		outputs:  make(map[string]map[string]int),
		progress: make(map[shared.PlayerID]map[string]int),
	}
}

// Ledger returns the economy view
func (h *Host) Ledger() *Ledger { return &Ledger{h} }

// Labor returns the labor view
func (h *Host) Labor() *Labor { return &Labor{h} }

// Research returns the research view
func (h *Host) Research() *Research { return &Research{h} }

// Storage returns the factory storage view
func (h *Host) Storage() *Storage { return &Storage{h} }

// Progress returns the achievement progress view
func (h *Host) Progress() *Progress { return &Progress{h} }

type hostDocument struct {
	Balances map[string]string         `yaml:"balances"`
	Labor    map[string]laborDocument  `yaml:"labor"`
	Research map[string]map[string]int `yaml:"research"`
	Inputs   map[string]map[string]int `yaml:"inputs"`
	Outputs  map[string]map[string]int `yaml:"outputs"`
	Progress map[string]map[string]int `yaml:"progress"`
}

type laborDocument struct {
	Workers       int     `yaml:"workers"`
	TimeReduction float64 `yaml:"time_reduction"`
	Wage          string  `yaml:"wage"`
}

// LoadFile replaces the host state with the contents of path. A missing file
// leaves the state empty.
func (h *Host) LoadFile(path string) error {
	// #nosec G304 -- path comes from operator configuration
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read host state: %w", err)
	}

	var doc hostDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal host state: %w", err)
	}

	fresh := NewHost()
	for id, amount := range doc.Balances {
		player, err := shared.ParsePlayerID(id)
		if err != nil {
			return err
		}
		money, err := shared.ParseMoney(amount)
		if err != nil {
			return fmt.Errorf("invalid balance for %s: %w", id, err)
		}
		fresh.balances[player] = money
	}
	for factoryID, l := range doc.Labor {
		wage := shared.Zero
		if l.Wage != "" {
			if wage, err = shared.ParseMoney(l.Wage); err != nil {
				return fmt.Errorf("invalid wage for %s: %w", factoryID, err)
			}
		}
		fresh.labor[factoryID] = LaborAssignment{Workers: l.Workers, TimeReduction: l.TimeReduction, Wage: wage}
	}
	for id, levels := range doc.Research {
		player, err := shared.ParsePlayerID(id)
		if err != nil {
			return err
		}
		fresh.research[player] = make(map[buff.Key]int)
		for key, level := range levels {
			k, err := buff.ParseKey(key)
			if err != nil {
				return err
			}
			fresh.research[player][k] = level
		}
	}
	fresh.inputs = copyStock(doc.Inputs)
	fresh.outputs = copyStock(doc.Outputs)
	for id, counts := range doc.Progress {
		player, err := shared.ParsePlayerID(id)
		if err != nil {
			return err
		}
		fresh.progress[player] = copyCounts(counts)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.balances, h.labor, h.research = fresh.balances, fresh.labor, fresh.research
	h.inputs, h.outputs, h.progress = fresh.inputs, fresh.outputs, fresh.progress
	return nil
}

// SaveFile writes the host state to path
func (h *Host) SaveFile(path string) error {
	h.mu.Lock()
	doc := hostDocument{
		Balances: make(map[string]string, len(h.balances)),
		Labor:    make(map[string]laborDocument, len(h.labor)),
		Research: make(map[string]map[string]int, len(h.research)),
		Inputs:   copyStock(h.inputs),
		Outputs:  copyStock(h.outputs),
		Progress: make(map[string]map[string]int, len(h.progress)),
	}
	for player, balance := range h.balances {
		doc.Balances[player.String()] = balance.StringFixed(2)
	}
	for factoryID, l := range h.labor {
		doc.Labor[factoryID] = laborDocument{Workers: l.Workers, TimeReduction: l.TimeReduction, Wage: l.Wage.StringFixed(2)}
	}
	for player, levels := range h.research {
		doc.Research[player.String()] = make(map[string]int, len(levels))
		for key, level := range levels {
			doc.Research[player.String()][key.String()] = level
		}
	}
	for player, counts := range h.progress {
		doc.Progress[player.String()] = copyCounts(counts)
	}
	h.mu.Unlock()

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal host state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create host state directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func copyStock(src map[string]map[string]int) map[string]map[string]int {
	dst := make(map[string]map[string]int, len(src))
	for factoryID, stock := range src {
		dst[factoryID] = copyCounts(stock)
	}
	return dst
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
