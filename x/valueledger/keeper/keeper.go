package keeper

import (
	"context"
	"encoding/hex"
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cometbft/cometbft/crypto/tmhash"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/valueledger/types"
)

// Keeper stores ledgers, groupings and positions
type Keeper struct {
	cdc       codec.BinaryCodec
	storeKey  storetypes.StoreKey
	authority string
	logger    log.Logger
}

// NewKeeper creates a new valueledger keeper
func NewKeeper(cdc codec.BinaryCodec, storeKey storetypes.StoreKey, authority string, logger log.Logger) *Keeper {
	return &Keeper{
		cdc:       cdc,
		storeKey:  storeKey,
		authority: authority,
		logger:    logger.With("module", "x/valueledger"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the address allowed to register ledgers
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// ============ Ledgers ============

// RegisterLedger adds a ledger; only the authority may call it
func (k *Keeper) RegisterLedger(ctx context.Context, authority string, ledger types.Ledger) error {
	if authority != k.authority {
		return errorsmod.Wrapf(types.ErrUnauthorized, "expected %s", k.authority)
	}
	if ledger.Ref == "" {
		return errorsmod.Wrap(types.ErrInvalidLedger, "empty ref")
	}
	if k.GetLedger(ctx, ledger.Ref) != nil {
		return errorsmod.Wrap(types.ErrLedgerExists, ledger.Ref)
	}
	k.SetLedger(ctx, ledger)
	k.logger.Info("Ledger registered", "ledger", ledger.Ref, "decimals", ledger.Decimals)
	return nil
}

// SetLedger saves a ledger
func (k *Keeper) SetLedger(ctx context.Context, ledger types.Ledger) {
	bz, _ := json.Marshal(ledger)
	k.GetStore(ctx).Set(types.LedgerKey(ledger.Ref), bz)
}

// GetLedger returns a ledger or nil
func (k *Keeper) GetLedger(ctx context.Context, ref string) *types.Ledger {
	bz := k.GetStore(ctx).Get(types.LedgerKey(ref))
	if bz == nil {
		return nil
	}
	var ledger types.Ledger
	if err := json.Unmarshal(bz, &ledger); err != nil {
		return nil
	}
	return &ledger
}

// GetAllLedgers returns every registered ledger
func (k *Keeper) GetAllLedgers(ctx context.Context) []types.Ledger {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.LedgerKeyPrefix)
	defer iterator.Close()

	var ledgers []types.Ledger
	for ; iterator.Valid(); iterator.Next() {
		var ledger types.Ledger
		if err := json.Unmarshal(iterator.Value(), &ledger); err != nil {
			continue
		}
		ledgers = append(ledgers, ledger)
	}
	return ledgers
}

// IsCurrencyAllowed reports whether ledger accepts denom as payment currency
func (k *Keeper) IsCurrencyAllowed(ctx context.Context, ledger, denom string) bool {
	l := k.GetLedger(ctx, ledger)
	return l != nil && l.AllowsCurrency(denom)
}

// ValidateValueDate rejects value dates already in the past
func (k *Keeper) ValidateValueDate(ctx context.Context, ledger string, valueDate, now int64) error {
	if k.GetLedger(ctx, ledger) == nil {
		return errorsmod.Wrap(types.ErrLedgerNotFound, ledger)
	}
	if valueDate < now {
		return errorsmod.Wrapf(types.ErrInvalidValueDate, "%d is before %d", valueDate, now)
	}
	return nil
}

// ============ Groupings ============

// DeriveGroupingID returns the content-addressed id of a grouping
func (k *Keeper) DeriveGroupingID(ledger string, attributes []byte) string {
	bz := make([]byte, 0, len(ledger)+len(attributes)+1)
	bz = append(bz, ledger...)
	bz = append(bz, 0x00)
	bz = append(bz, attributes...)
	return hex.EncodeToString(tmhash.Sum(bz))
}

// CreateGrouping registers the grouping derived from attributes
func (k *Keeper) CreateGrouping(ctx context.Context, ledger, owner string, attributes []byte) (string, error) {
	if k.GetLedger(ctx, ledger) == nil {
		return "", errorsmod.Wrap(types.ErrLedgerNotFound, ledger)
	}
	groupingID := k.DeriveGroupingID(ledger, attributes)
	if k.GetGrouping(ctx, ledger, groupingID) != nil {
		return "", errorsmod.Wrap(types.ErrGroupingExists, groupingID)
	}

	k.SetGrouping(ctx, types.Grouping{
		Ledger:     ledger,
		GroupingID: groupingID,
		Owner:      owner,
		Attributes: attributes,
	})
	return groupingID, nil
}

// SetGrouping saves a grouping
func (k *Keeper) SetGrouping(ctx context.Context, grouping types.Grouping) {
	bz, _ := json.Marshal(grouping)
	k.GetStore(ctx).Set(types.GroupingKey(grouping.Ledger, grouping.GroupingID), bz)
}

// GetGrouping returns a grouping or nil
func (k *Keeper) GetGrouping(ctx context.Context, ledger, groupingID string) *types.Grouping {
	bz := k.GetStore(ctx).Get(types.GroupingKey(ledger, groupingID))
	if bz == nil {
		return nil
	}
	var grouping types.Grouping
	if err := json.Unmarshal(bz, &grouping); err != nil {
		return nil
	}
	return &grouping
}

// GetAllGroupings returns every grouping of every ledger
func (k *Keeper) GetAllGroupings(ctx context.Context) []types.Grouping {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.GroupingKeyPrefix)
	defer iterator.Close()

	var groupings []types.Grouping
	for ; iterator.Valid(); iterator.Next() {
		var grouping types.Grouping
		if err := json.Unmarshal(iterator.Value(), &grouping); err != nil {
			continue
		}
		groupings = append(groupings, grouping)
	}
	return groupings
}

// ============ Positions ============

// MintValue adds value to positionID, or to a new position when positionID is
// zero. Returns the id of the credited position.
func (k *Keeper) MintValue(ctx context.Context, ledger, owner, groupingID string, positionID uint64, value math.Int) (uint64, error) {
	if value.IsNil() || !value.IsPositive() {
		return 0, errorsmod.Wrapf(types.ErrInvalidAmount, "mint %v", value)
	}
	if k.GetGrouping(ctx, ledger, groupingID) == nil {
		return 0, errorsmod.Wrapf(types.ErrGroupingNotFound, "%s/%s", ledger, groupingID)
	}

	if positionID == 0 {
		position := types.Position{
			Ledger:     ledger,
			PositionID: k.nextPositionID(ctx, ledger),
			GroupingID: groupingID,
			Owner:      owner,
			Value:      value,
		}
		k.SetPosition(ctx, position)
		return position.PositionID, nil
	}

	position := k.GetPosition(ctx, ledger, positionID)
	if position == nil {
		return 0, errorsmod.Wrapf(types.ErrPositionNotFound, "%s/%d", ledger, positionID)
	}
	if position.GroupingID != groupingID {
		return 0, types.ErrGroupingMismatch
	}
	position.Value = position.Value.Add(value)
	k.SetPosition(ctx, *position)
	return positionID, nil
}

// BurnValue removes value from a position; an emptied position is deleted
func (k *Keeper) BurnValue(ctx context.Context, ledger string, positionID uint64, value math.Int) error {
	if value.IsNil() || !value.IsPositive() {
		return errorsmod.Wrapf(types.ErrInvalidAmount, "burn %v", value)
	}
	position := k.GetPosition(ctx, ledger, positionID)
	if position == nil {
		return errorsmod.Wrapf(types.ErrPositionNotFound, "%s/%d", ledger, positionID)
	}
	if position.Value.LT(value) {
		return errorsmod.Wrapf(types.ErrInsufficientValue, "position %d holds %s", positionID, position.Value)
	}

	position.Value = position.Value.Sub(value)
	if position.Value.IsZero() {
		k.deletePosition(ctx, *position)
		return nil
	}
	k.SetPosition(ctx, *position)
	return nil
}

// TransferPosition moves a whole position to recipient
func (k *Keeper) TransferPosition(ctx context.Context, owner, ledger string, positionID uint64, recipient string) error {
	position := k.GetPosition(ctx, ledger, positionID)
	if position == nil {
		return errorsmod.Wrapf(types.ErrPositionNotFound, "%s/%d", ledger, positionID)
	}
	if position.Owner != owner {
		return types.ErrNotOwner
	}

	k.GetStore(ctx).Delete(types.OwnerIndexKey(ledger, owner, positionID))
	position.Owner = recipient
	k.SetPosition(ctx, *position)

	k.logger.Info("Position transferred",
		"ledger", ledger,
		"position_id", positionID,
		"from", owner,
		"to", recipient,
	)
	return nil
}

// ValueOf returns the value held by a position
func (k *Keeper) ValueOf(ctx context.Context, ledger string, positionID uint64) (math.Int, error) {
	position := k.GetPosition(ctx, ledger, positionID)
	if position == nil {
		return math.Int{}, errorsmod.Wrapf(types.ErrPositionNotFound, "%s/%d", ledger, positionID)
	}
	return position.Value, nil
}

// GroupOf returns the grouping of a position
func (k *Keeper) GroupOf(ctx context.Context, ledger string, positionID uint64) (string, error) {
	position := k.GetPosition(ctx, ledger, positionID)
	if position == nil {
		return "", errorsmod.Wrapf(types.ErrPositionNotFound, "%s/%d", ledger, positionID)
	}
	return position.GroupingID, nil
}

// OwnerOf returns the owner of a position
func (k *Keeper) OwnerOf(ctx context.Context, ledger string, positionID uint64) (string, error) {
	position := k.GetPosition(ctx, ledger, positionID)
	if position == nil {
		return "", errorsmod.Wrapf(types.ErrPositionNotFound, "%s/%d", ledger, positionID)
	}
	return position.Owner, nil
}

// SetPosition saves a position and its owner index entry
func (k *Keeper) SetPosition(ctx context.Context, position types.Position) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(position)
	store.Set(types.PositionKey(position.Ledger, position.PositionID), bz)
	store.Set(types.OwnerIndexKey(position.Ledger, position.Owner, position.PositionID), []byte{1})
}

// GetPosition returns a position or nil
func (k *Keeper) GetPosition(ctx context.Context, ledger string, positionID uint64) *types.Position {
	bz := k.GetStore(ctx).Get(types.PositionKey(ledger, positionID))
	if bz == nil {
		return nil
	}
	var position types.Position
	if err := json.Unmarshal(bz, &position); err != nil {
		return nil
	}
	return &position
}

// GetPositionsByOwner returns the positions an owner holds in a ledger
func (k *Keeper) GetPositionsByOwner(ctx context.Context, ledger, owner string) []types.Position {
	prefix := types.OwnerIndexPrefix(ledger, owner)
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), prefix)
	defer iterator.Close()

	var positions []types.Position
	for ; iterator.Valid(); iterator.Next() {
		id := sdk.BigEndianToUint64(iterator.Key()[len(prefix):])
		if position := k.GetPosition(ctx, ledger, id); position != nil {
			positions = append(positions, *position)
		}
	}
	return positions
}

// GetAllPositions returns every position of every ledger
func (k *Keeper) GetAllPositions(ctx context.Context) []types.Position {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.PositionKeyPrefix)
	defer iterator.Close()

	var positions []types.Position
	for ; iterator.Valid(); iterator.Next() {
		var position types.Position
		if err := json.Unmarshal(iterator.Value(), &position); err != nil {
			continue
		}
		positions = append(positions, position)
	}
	return positions
}

func (k *Keeper) deletePosition(ctx context.Context, position types.Position) {
	store := k.GetStore(ctx)
	store.Delete(types.PositionKey(position.Ledger, position.PositionID))
	store.Delete(types.OwnerIndexKey(position.Ledger, position.Owner, position.PositionID))
}

// ============ Sequences ============

// GetSequence returns the last position id issued by a ledger
func (k *Keeper) GetSequence(ctx context.Context, ledger string) uint64 {
	bz := k.GetStore(ctx).Get(types.SequenceKey(ledger))
	if bz == nil {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

// SetSequence saves the last position id issued by a ledger
func (k *Keeper) SetSequence(ctx context.Context, ledger string, seq uint64) {
	k.GetStore(ctx).Set(types.SequenceKey(ledger), sdk.Uint64ToBigEndian(seq))
}

func (k *Keeper) nextPositionID(ctx context.Context, ledger string) uint64 {
	id := k.GetSequence(ctx, ledger) + 1
	k.SetSequence(ctx, ledger, id)
	return id
}

// ============ Genesis ============

// InitGenesis loads the ledger state
func (k *Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) {
	for _, ledger := range gs.Ledgers {
		k.SetLedger(ctx, ledger)
	}
	for _, grouping := range gs.Groupings {
		k.SetGrouping(ctx, grouping)
	}
	for _, position := range gs.Positions {
		k.SetPosition(ctx, position)
	}
	for _, seq := range gs.Sequences {
		k.SetSequence(ctx, seq.Ledger, seq.Sequence)
	}
}

// ExportGenesis dumps the ledger state
func (k *Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	gs := types.DefaultGenesis()
	gs.Ledgers = k.GetAllLedgers(ctx)
	gs.Groupings = k.GetAllGroupings(ctx)
	gs.Positions = k.GetAllPositions(ctx)
	for _, ledger := range gs.Ledgers {
		gs.Sequences = append(gs.Sequences, types.LedgerSequence{
			Ledger:   ledger.Ref,
			Sequence: k.GetSequence(ctx, ledger.Ref),
		})
	}
	return gs
}
