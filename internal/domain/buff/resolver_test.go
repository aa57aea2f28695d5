package buff_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

var player = shared.MustParsePlayerID("6f1c3e4a-5b2d-4c8e-9a7f-1d2e3f4a5b6c")

type fakeResearch struct {
	levels map[buff.Key]int
	err    error
}

func (f *fakeResearch) CompletedLevel(ctx context.Context, p shared.PlayerID, key buff.Key) (int, error) {
	return f.levels[key], f.err
}

func TestResolver_ValueIsLevelTimesPerLevel(t *testing.T) {
	research := &fakeResearch{levels: map[buff.Key]int{buff.KeyProductionTime: 3}}
	resolver := buff.NewResolver(research, buff.StaticPerLevel{buff.KeyProductionTime: 0.05}, nil)

	assert.InDelta(t, 0.15, resolver.Value(context.Background(), player, buff.KeyProductionTime), 1e-9)
	assert.Equal(t, 0.0, resolver.Value(context.Background(), player, buff.KeyTaxReduction))
}

func TestResolver_FractionIsClamped(t *testing.T) {
	research := &fakeResearch{levels: map[buff.Key]int{buff.KeyUpgradeCost: 40}}
	resolver := buff.NewResolver(research, buff.StaticPerLevel{buff.KeyUpgradeCost: 0.05}, nil)

	assert.InDelta(t, 2.0, resolver.Value(context.Background(), player, buff.KeyUpgradeCost), 1e-9)
	assert.Equal(t, 1.0, resolver.Fraction(context.Background(), player, buff.KeyUpgradeCost))
}

func TestResolver_ResearchChangesApplyImmediately(t *testing.T) {
	research := &fakeResearch{levels: map[buff.Key]int{}}
	resolver := buff.NewResolver(research, buff.StaticPerLevel{buff.KeyTaxReduction: 0.02}, nil)

	assert.Equal(t, 0.0, resolver.Fraction(context.Background(), player, buff.KeyTaxReduction))

	research.levels[buff.KeyTaxReduction] = 5
	assert.InDelta(t, 0.10, resolver.Fraction(context.Background(), player, buff.KeyTaxReduction), 1e-9)
}

func TestResolver_LookupFailureResolvesToZero(t *testing.T) {
	research := &fakeResearch{levels: map[buff.Key]int{buff.KeyUpgradeTime: 2}, err: errors.New("offline")}
	resolver := buff.NewResolver(research, buff.StaticPerLevel{buff.KeyUpgradeTime: 0.05}, nil)

	assert.Equal(t, 0.0, resolver.Value(context.Background(), player, buff.KeyUpgradeTime))
}

func TestResolver_NilResearch(t *testing.T) {
	resolver := buff.NewResolver(nil, nil, nil)

	assert.Equal(t, 0.0, resolver.Value(context.Background(), player, buff.KeyProductionTime))
}

func TestParseKey(t *testing.T) {
	for _, key := range buff.AllKeys() {
		parsed, err := buff.ParseKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	}
	_, err := buff.ParseKey("speed")
	assert.Error(t, err)
}
