package keeper

import (
	"context"

	"github.com/openalpha/fundmarket/x/valueledger/types"
)

var _ types.MsgServer = (*MsgServer)(nil)

// MsgServer defines the valueledger MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// RegisterLedger handles MsgRegisterLedger
func (m *MsgServer) RegisterLedger(ctx context.Context, msg *types.MsgRegisterLedger) (*types.MsgRegisterLedgerResponse, error) {
	if err := m.keeper.RegisterLedger(ctx, msg.Authority, msg.Ledger); err != nil {
		return nil, err
	}
	return &types.MsgRegisterLedgerResponse{}, nil
}

// TransferPosition handles MsgTransferPosition
func (m *MsgServer) TransferPosition(ctx context.Context, msg *types.MsgTransferPosition) (*types.MsgTransferPositionResponse, error) {
	if err := m.keeper.TransferPosition(ctx, msg.Owner, msg.Ledger, msg.PositionID, msg.Recipient); err != nil {
		return nil, err
	}
	return &types.MsgTransferPositionResponse{}, nil
}
