package types

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterInterfaces registers the module's interface types
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgRegisterLedger{},
		&MsgTransferPosition{},
	)
}

const (
	TypeMsgRegisterLedger   = "register_ledger"
	TypeMsgTransferPosition = "transfer_position"
)

// MsgServer defines the valueledger message service
type MsgServer interface {
	RegisterLedger(context.Context, *MsgRegisterLedger) (*MsgRegisterLedgerResponse, error)
	TransferPosition(context.Context, *MsgTransferPosition) (*MsgTransferPositionResponse, error)
}

// RegisterMsgServer registers the MsgServer with the router
func RegisterMsgServer(s interface{}, srv MsgServer) {}

// MsgRegisterLedger registers a new ledger; authority only
type MsgRegisterLedger struct {
	Authority string `json:"authority"`
	Ledger    Ledger `json:"ledger"`
}

func (msg *MsgRegisterLedger) Reset() { *msg = MsgRegisterLedger{} }
func (msg *MsgRegisterLedger) String() string {
	return fmt.Sprintf("MsgRegisterLedger{%s}", msg.Ledger.Ref)
}
func (msg *MsgRegisterLedger) ProtoMessage() {}
func (msg *MsgRegisterLedger) XXX_MessageName() string {
	return "valueledger.v1.MsgRegisterLedger"
}
func (msg *MsgRegisterLedger) Route() string { return RouterKey }
func (msg *MsgRegisterLedger) Type() string  { return TypeMsgRegisterLedger }

// ValidateBasic implements sdk.Msg
func (msg *MsgRegisterLedger) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return errorsmod.Wrapf(ErrInvalidAddress, "authority: %s", err)
	}
	if msg.Ledger.Ref == "" {
		return errorsmod.Wrap(ErrInvalidLedger, "empty ref")
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg *MsgRegisterLedger) GetSigners() []sdk.AccAddress {
	acc, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{acc}
}

// MsgRegisterLedgerResponse is the response for MsgRegisterLedger
type MsgRegisterLedgerResponse struct{}

func (msg *MsgRegisterLedgerResponse) Reset()         { *msg = MsgRegisterLedgerResponse{} }
func (msg *MsgRegisterLedgerResponse) String() string { return "MsgRegisterLedgerResponse" }
func (msg *MsgRegisterLedgerResponse) ProtoMessage()  {}

// MsgTransferPosition hands a whole position to another owner
type MsgTransferPosition struct {
	Owner      string `json:"owner"`
	Ledger     string `json:"ledger"`
	PositionID uint64 `json:"position_id"`
	Recipient  string `json:"recipient"`
}

func (msg *MsgTransferPosition) Reset() { *msg = MsgTransferPosition{} }
func (msg *MsgTransferPosition) String() string {
	return fmt.Sprintf("MsgTransferPosition{%s/%d -> %s}", msg.Ledger, msg.PositionID, msg.Recipient)
}
func (msg *MsgTransferPosition) ProtoMessage() {}
func (msg *MsgTransferPosition) XXX_MessageName() string {
	return "valueledger.v1.MsgTransferPosition"
}
func (msg *MsgTransferPosition) Route() string { return RouterKey }
func (msg *MsgTransferPosition) Type() string  { return TypeMsgTransferPosition }

// ValidateBasic implements sdk.Msg
func (msg *MsgTransferPosition) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return errorsmod.Wrapf(ErrInvalidAddress, "owner: %s", err)
	}
	if _, err := sdk.AccAddressFromBech32(msg.Recipient); err != nil {
		return errorsmod.Wrapf(ErrInvalidAddress, "recipient: %s", err)
	}
	if msg.Ledger == "" {
		return errorsmod.Wrap(ErrInvalidLedger, "empty ledger")
	}
	if msg.PositionID == 0 {
		return ErrPositionNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg *MsgTransferPosition) GetSigners() []sdk.AccAddress {
	acc, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{acc}
}

// MsgTransferPositionResponse is the response for MsgTransferPosition
type MsgTransferPositionResponse struct{}

func (msg *MsgTransferPositionResponse) Reset()         { *msg = MsgTransferPositionResponse{} }
func (msg *MsgTransferPositionResponse) String() string { return "MsgTransferPositionResponse" }
func (msg *MsgTransferPositionResponse) ProtoMessage()  {}
