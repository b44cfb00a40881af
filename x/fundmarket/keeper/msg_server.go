package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

var _ types.MsgServer = (*MsgServer)(nil)

// MsgServer defines the fundmarket MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// UpdateParams handles MsgUpdateParams
func (m *MsgServer) UpdateParams(ctx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	if err := m.keeper.UpdateParams(ctx, msg.Authority, msg.Params); err != nil {
		return nil, err
	}
	return &types.MsgUpdateParamsResponse{}, nil
}

// CreatePool handles MsgCreatePool
func (m *MsgServer) CreatePool(ctx context.Context, msg *types.MsgCreatePool) (*types.MsgCreatePoolResponse, error) {
	pool, err := m.keeper.CreatePool(ctx, msg.Creator, msg.Config)
	if err != nil {
		return nil, err
	}
	return &types.MsgCreatePoolResponse{
		PoolID:          pool.PoolID,
		ShareGroupingID: pool.ShareGroupingID,
	}, nil
}

// UpdateWhitelist handles MsgUpdateWhitelist
func (m *MsgServer) UpdateWhitelist(ctx context.Context, msg *types.MsgUpdateWhitelist) (*types.MsgUpdateWhitelistResponse, error) {
	if err := m.keeper.UpdateWhitelist(ctx, msg.Manager, msg.PoolID, msg.Whitelist); err != nil {
		return nil, err
	}
	return &types.MsgUpdateWhitelistResponse{}, nil
}

// Subscribe handles MsgSubscribe
func (m *MsgServer) Subscribe(ctx context.Context, msg *types.MsgSubscribe) (*types.MsgSubscribeResponse, error) {
	amount, err := types.ParseAmount(msg.Amount)
	if err != nil {
		return nil, err
	}

	result, err := m.keeper.Subscribe(ctx, msg.Buyer, msg.PoolID, amount, msg.PositionID, msg.Deadline)
	if err != nil {
		return nil, err
	}

	return &types.MsgSubscribeResponse{
		PositionID: result.PositionID,
		Value:      result.Value.String(),
		Nav:        result.Nav.String(),
	}, nil
}

// SetSubscribeNav handles MsgSetSubscribeNav
func (m *MsgServer) SetSubscribeNav(ctx context.Context, msg *types.MsgSetSubscribeNav) (*types.MsgSetSubscribeNavResponse, error) {
	nav, err := types.ParseAmount(msg.Nav)
	if err != nil {
		return nil, err
	}
	if err := m.keeper.SetSubscribeNav(ctx, msg.Manager, msg.PoolID, msg.Timestamp, nav); err != nil {
		return nil, err
	}
	return &types.MsgSetSubscribeNavResponse{}, nil
}

// RequestRedeem handles MsgRequestRedeem
func (m *MsgServer) RequestRedeem(ctx context.Context, msg *types.MsgRequestRedeem) (*types.MsgRequestRedeemResponse, error) {
	value, err := types.ParseAmount(msg.Value)
	if err != nil {
		return nil, err
	}

	result, err := m.keeper.RequestRedeem(ctx, msg.Owner, msg.PoolID, msg.ShareID, msg.RedemptionID, value)
	if err != nil {
		return nil, err
	}

	return &types.MsgRequestRedeemResponse{
		RedemptionID: result.RedemptionID,
		SlotID:       result.SlotID,
	}, nil
}

// RevokeRedeem handles MsgRevokeRedeem
func (m *MsgServer) RevokeRedeem(ctx context.Context, msg *types.MsgRevokeRedeem) (*types.MsgRevokeRedeemResponse, error) {
	shareID, err := m.keeper.RevokeRedeem(ctx, msg.Owner, msg.PoolID, msg.RedemptionID)
	if err != nil {
		return nil, err
	}
	return &types.MsgRevokeRedeemResponse{ShareID: shareID}, nil
}

// CloseRedeemSlot handles MsgCloseRedeemSlot
func (m *MsgServer) CloseRedeemSlot(ctx context.Context, msg *types.MsgCloseRedeemSlot) (*types.MsgCloseRedeemSlotResponse, error) {
	closedID, nextID, err := m.keeper.CloseCurrentRedeemSlot(ctx, msg.Manager, msg.PoolID)
	if err != nil {
		return nil, err
	}
	return &types.MsgCloseRedeemSlotResponse{
		ClosedSlotID: closedID,
		NextSlotID:   nextID,
	}, nil
}

// SetRedeemNav handles MsgSetRedeemNav
func (m *MsgServer) SetRedeemNav(ctx context.Context, msg *types.MsgSetRedeemNav) (*types.MsgSetRedeemNavResponse, error) {
	nav, err := types.ParseAmount(msg.Nav)
	if err != nil {
		return nil, err
	}
	repaid := math.ZeroInt()
	if msg.RepaidBalanceAtSet != "" {
		if repaid, err = types.ParseAmount(msg.RepaidBalanceAtSet); err != nil {
			return nil, err
		}
	}

	result, err := m.keeper.SetRedeemNav(ctx, msg.Manager, msg.PoolID, msg.SlotID, nav, repaid)
	if err != nil {
		return nil, err
	}

	return &types.MsgSetRedeemNavResponse{
		PerUnitNav:  result.PerUnitNav.String(),
		CarryAmount: result.CarryAmount.String(),
	}, nil
}

// Repay handles MsgRepay
func (m *MsgServer) Repay(ctx context.Context, msg *types.MsgRepay) (*types.MsgRepayResponse, error) {
	amount, err := types.ParseAmount(msg.Amount)
	if err != nil {
		return nil, err
	}

	escrow, err := m.keeper.Repay(ctx, msg.Payer, msg.SlotID, msg.Currency, amount)
	if err != nil {
		return nil, err
	}
	return &types.MsgRepayResponse{EscrowBalance: escrow.String()}, nil
}

// Claim handles MsgClaim
func (m *MsgServer) Claim(ctx context.Context, msg *types.MsgClaim) (*types.MsgClaimResponse, error) {
	value, err := types.ParseAmount(msg.Value)
	if err != nil {
		return nil, err
	}

	recipient := msg.Recipient
	if recipient == "" {
		recipient = msg.Owner
	}
	owed, err := m.keeper.Claim(ctx, msg.Owner, recipient, msg.RedemptionID, msg.Currency, value)
	if err != nil {
		return nil, err
	}
	return &types.MsgClaimResponse{CurrencyAmount: owed.String()}, nil
}
