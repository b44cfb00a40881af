package readmodel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// appGenesis is the subset of a chain genesis or `export` document we read
type appGenesis struct {
	AppState map[string]json.RawMessage `json:"app_state"`
}

// ReadSnapshot decodes fund market state from a genesis.json, the output of
// `fundmarketd export`, or a bare module genesis
func ReadSnapshot(bz []byte) (types.GenesisState, error) {
	var gs types.GenesisState

	var doc appGenesis
	if err := json.Unmarshal(bz, &doc); err != nil {
		return gs, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.AppState != nil {
		raw, ok := doc.AppState[types.ModuleName]
		if !ok {
			return gs, fmt.Errorf("app_state has no %s section", types.ModuleName)
		}
		bz = raw
	}

	if err := json.Unmarshal(bz, &gs); err != nil {
		return gs, fmt.Errorf("decode %s state: %w", types.ModuleName, err)
	}
	if err := gs.Validate(); err != nil {
		return gs, fmt.Errorf("invalid %s state: %w", types.ModuleName, err)
	}
	return gs, nil
}

// LoadFile reads a snapshot from path and loads it into the store
func (s *Store) LoadFile(path string) error {
	bz, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	gs, err := ReadSnapshot(bz)
	if err != nil {
		return err
	}
	s.Load(gs)
	return nil
}
