package types

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterInterfaces registers the module's interface types
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgUpdateParams{},
		&MsgCreatePool{},
		&MsgUpdateWhitelist{},
		&MsgSubscribe{},
		&MsgSetSubscribeNav{},
		&MsgRequestRedeem{},
		&MsgRevokeRedeem{},
		&MsgCloseRedeemSlot{},
		&MsgSetRedeemNav{},
		&MsgRepay{},
		&MsgClaim{},
	)
}

// Message types
const (
	TypeMsgUpdateParams    = "update_params"
	TypeMsgCreatePool      = "create_pool"
	TypeMsgUpdateWhitelist = "update_whitelist"
	TypeMsgSubscribe       = "subscribe"
	TypeMsgSetSubscribeNav = "set_subscribe_nav"
	TypeMsgRequestRedeem   = "request_redeem"
	TypeMsgRevokeRedeem    = "revoke_redeem"
	TypeMsgCloseRedeemSlot = "close_redeem_slot"
	TypeMsgSetRedeemNav    = "set_redeem_nav"
	TypeMsgRepay           = "repay"
	TypeMsgClaim           = "claim"
)

// MsgServer defines the fundmarket message service
type MsgServer interface {
	UpdateParams(context.Context, *MsgUpdateParams) (*MsgUpdateParamsResponse, error)
	CreatePool(context.Context, *MsgCreatePool) (*MsgCreatePoolResponse, error)
	UpdateWhitelist(context.Context, *MsgUpdateWhitelist) (*MsgUpdateWhitelistResponse, error)
	Subscribe(context.Context, *MsgSubscribe) (*MsgSubscribeResponse, error)
	SetSubscribeNav(context.Context, *MsgSetSubscribeNav) (*MsgSetSubscribeNavResponse, error)
	RequestRedeem(context.Context, *MsgRequestRedeem) (*MsgRequestRedeemResponse, error)
	RevokeRedeem(context.Context, *MsgRevokeRedeem) (*MsgRevokeRedeemResponse, error)
	CloseRedeemSlot(context.Context, *MsgCloseRedeemSlot) (*MsgCloseRedeemSlotResponse, error)
	SetRedeemNav(context.Context, *MsgSetRedeemNav) (*MsgSetRedeemNavResponse, error)
	Repay(context.Context, *MsgRepay) (*MsgRepayResponse, error)
	Claim(context.Context, *MsgClaim) (*MsgClaimResponse, error)
}

// RegisterMsgServer registers the MsgServer with the router.
// Messages are plain structs without generated service descriptors, so the
// app dispatches them through the keeper's msg server directly.
func RegisterMsgServer(s interface{}, srv MsgServer) {}

// ParseAmount parses a non-negative integer amount
func ParseAmount(s string) (math.Int, error) {
	amount, ok := math.NewIntFromString(s)
	if !ok || amount.IsNegative() {
		return math.Int{}, errorsmod.Wrapf(ErrInvalidAmount, "%q", s)
	}
	return amount, nil
}

func validateAddress(addr, field string) error {
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return errorsmod.Wrapf(ErrInvalidAddress, "%s: %s", field, err)
	}
	return nil
}

func validatePositiveAmount(s, field string) error {
	amount, err := ParseAmount(s)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return errorsmod.Wrapf(ErrInvalidAmount, "%s must be positive", field)
	}
	return nil
}

func signer(addr string) []sdk.AccAddress {
	acc, _ := sdk.AccAddressFromBech32(addr)
	return []sdk.AccAddress{acc}
}

// ============ MsgUpdateParams ============

// MsgUpdateParams replaces the market params; authority only
type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

func (msg *MsgUpdateParams) Reset()         { *msg = MsgUpdateParams{} }
func (msg *MsgUpdateParams) String() string { return fmt.Sprintf("MsgUpdateParams{%s}", msg.Authority) }
func (msg *MsgUpdateParams) ProtoMessage()  {}
func (msg *MsgUpdateParams) XXX_MessageName() string {
	return "fundmarket.v1.MsgUpdateParams"
}
func (msg *MsgUpdateParams) Route() string { return RouterKey }
func (msg *MsgUpdateParams) Type() string  { return TypeMsgUpdateParams }

// ValidateBasic implements sdk.Msg
func (msg *MsgUpdateParams) ValidateBasic() error {
	if err := validateAddress(msg.Authority, "authority"); err != nil {
		return err
	}
	return msg.Params.Validate()
}

// GetSigners implements sdk.Msg
func (msg *MsgUpdateParams) GetSigners() []sdk.AccAddress { return signer(msg.Authority) }

// MsgUpdateParamsResponse is the response for MsgUpdateParams
type MsgUpdateParamsResponse struct{}

func (msg *MsgUpdateParamsResponse) Reset()         { *msg = MsgUpdateParamsResponse{} }
func (msg *MsgUpdateParamsResponse) String() string { return "MsgUpdateParamsResponse" }
func (msg *MsgUpdateParamsResponse) ProtoMessage()  {}

// ============ MsgCreatePool ============

// MsgCreatePool registers a new pool issued by Creator
type MsgCreatePool struct {
	Creator string     `json:"creator"`
	Config  PoolConfig `json:"config"`
}

func (msg *MsgCreatePool) Reset()         { *msg = MsgCreatePool{} }
func (msg *MsgCreatePool) String() string { return fmt.Sprintf("MsgCreatePool{%s, %s}", msg.Creator, msg.Config.Currency) }
func (msg *MsgCreatePool) ProtoMessage()  {}
func (msg *MsgCreatePool) XXX_MessageName() string {
	return "fundmarket.v1.MsgCreatePool"
}
func (msg *MsgCreatePool) Route() string { return RouterKey }
func (msg *MsgCreatePool) Type() string  { return TypeMsgCreatePool }

// ValidateBasic only checks the signer; config validation is ordered and
// stateful, so it runs in the keeper.
func (msg *MsgCreatePool) ValidateBasic() error {
	return validateAddress(msg.Creator, "creator")
}

// GetSigners implements sdk.Msg
func (msg *MsgCreatePool) GetSigners() []sdk.AccAddress { return signer(msg.Creator) }

// MsgCreatePoolResponse returns the derived pool id
type MsgCreatePoolResponse struct {
	PoolID          string `json:"pool_id"`
	ShareGroupingID string `json:"share_grouping_id"`
}

func (msg *MsgCreatePoolResponse) Reset()         { *msg = MsgCreatePoolResponse{} }
func (msg *MsgCreatePoolResponse) String() string { return msg.PoolID }
func (msg *MsgCreatePoolResponse) ProtoMessage()  {}

// ============ MsgUpdateWhitelist ============

// MsgUpdateWhitelist replaces the whitelist of a restricted pool
type MsgUpdateWhitelist struct {
	Manager   string   `json:"manager"`
	PoolID    string   `json:"pool_id"`
	Whitelist []string `json:"whitelist"`
}

func (msg *MsgUpdateWhitelist) Reset()         { *msg = MsgUpdateWhitelist{} }
func (msg *MsgUpdateWhitelist) String() string { return fmt.Sprintf("MsgUpdateWhitelist{%s}", msg.PoolID) }
func (msg *MsgUpdateWhitelist) ProtoMessage()  {}
func (msg *MsgUpdateWhitelist) XXX_MessageName() string {
	return "fundmarket.v1.MsgUpdateWhitelist"
}
func (msg *MsgUpdateWhitelist) Route() string { return RouterKey }
func (msg *MsgUpdateWhitelist) Type() string  { return TypeMsgUpdateWhitelist }

// ValidateBasic implements sdk.Msg
func (msg *MsgUpdateWhitelist) ValidateBasic() error {
	if err := validateAddress(msg.Manager, "manager"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg *MsgUpdateWhitelist) GetSigners() []sdk.AccAddress { return signer(msg.Manager) }

// MsgUpdateWhitelistResponse is the response for MsgUpdateWhitelist
type MsgUpdateWhitelistResponse struct{}

func (msg *MsgUpdateWhitelistResponse) Reset()         { *msg = MsgUpdateWhitelistResponse{} }
func (msg *MsgUpdateWhitelistResponse) String() string { return "MsgUpdateWhitelistResponse" }
func (msg *MsgUpdateWhitelistResponse) ProtoMessage()  {}

// ============ MsgSubscribe ============

// MsgSubscribe pays Amount of the pool currency for share value.
// PositionID zero mints a new share position.
type MsgSubscribe struct {
	Buyer      string `json:"buyer"`
	PoolID     string `json:"pool_id"`
	Amount     string `json:"amount"`
	PositionID uint64 `json:"position_id,omitempty"`
	Deadline   int64  `json:"deadline"`
}

func (msg *MsgSubscribe) Reset() { *msg = MsgSubscribe{} }
func (msg *MsgSubscribe) String() string {
	return fmt.Sprintf("MsgSubscribe{Buyer: %s, PoolID: %s, Amount: %s}", msg.Buyer, msg.PoolID, msg.Amount)
}
func (msg *MsgSubscribe) ProtoMessage() {}
func (msg *MsgSubscribe) XXX_MessageName() string {
	return "fundmarket.v1.MsgSubscribe"
}
func (msg *MsgSubscribe) Route() string { return RouterKey }
func (msg *MsgSubscribe) Type() string  { return TypeMsgSubscribe }

// ValidateBasic implements sdk.Msg
func (msg *MsgSubscribe) ValidateBasic() error {
	if err := validateAddress(msg.Buyer, "buyer"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return validatePositiveAmount(msg.Amount, "amount")
}

// GetSigners implements sdk.Msg
func (msg *MsgSubscribe) GetSigners() []sdk.AccAddress { return signer(msg.Buyer) }

// MsgSubscribeResponse returns the credited position
type MsgSubscribeResponse struct {
	PositionID uint64 `json:"position_id"`
	Value      string `json:"value"`
	Nav        string `json:"nav"`
}

func (msg *MsgSubscribeResponse) Reset()         { *msg = MsgSubscribeResponse{} }
func (msg *MsgSubscribeResponse) String() string { return msg.Value }
func (msg *MsgSubscribeResponse) ProtoMessage()  {}

// ============ MsgSetSubscribeNav ============

// MsgSetSubscribeNav appends a subscribe NAV checkpoint
type MsgSetSubscribeNav struct {
	Manager   string `json:"manager"`
	PoolID    string `json:"pool_id"`
	Timestamp int64  `json:"timestamp"`
	Nav       string `json:"nav"`
}

func (msg *MsgSetSubscribeNav) Reset()         { *msg = MsgSetSubscribeNav{} }
func (msg *MsgSetSubscribeNav) String() string { return fmt.Sprintf("MsgSetSubscribeNav{%s, %s}", msg.PoolID, msg.Nav) }
func (msg *MsgSetSubscribeNav) ProtoMessage()  {}
func (msg *MsgSetSubscribeNav) XXX_MessageName() string {
	return "fundmarket.v1.MsgSetSubscribeNav"
}
func (msg *MsgSetSubscribeNav) Route() string { return RouterKey }
func (msg *MsgSetSubscribeNav) Type() string  { return TypeMsgSetSubscribeNav }

// ValidateBasic implements sdk.Msg
func (msg *MsgSetSubscribeNav) ValidateBasic() error {
	if err := validateAddress(msg.Manager, "manager"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return validatePositiveAmount(msg.Nav, "nav")
}

// GetSigners implements sdk.Msg
func (msg *MsgSetSubscribeNav) GetSigners() []sdk.AccAddress { return signer(msg.Manager) }

// MsgSetSubscribeNavResponse is the response for MsgSetSubscribeNav
type MsgSetSubscribeNavResponse struct{}

func (msg *MsgSetSubscribeNavResponse) Reset()         { *msg = MsgSetSubscribeNavResponse{} }
func (msg *MsgSetSubscribeNavResponse) String() string { return "MsgSetSubscribeNavResponse" }
func (msg *MsgSetSubscribeNavResponse) ProtoMessage()  {}

// ============ MsgRequestRedeem ============

// MsgRequestRedeem moves Value from a share position into the pool's open slot.
// RedemptionID zero creates a new redemption position.
type MsgRequestRedeem struct {
	Owner        string `json:"owner"`
	PoolID       string `json:"pool_id"`
	ShareID      uint64 `json:"share_id"`
	RedemptionID uint64 `json:"redemption_id,omitempty"`
	Value        string `json:"value"`
}

func (msg *MsgRequestRedeem) Reset() { *msg = MsgRequestRedeem{} }
func (msg *MsgRequestRedeem) String() string {
	return fmt.Sprintf("MsgRequestRedeem{Owner: %s, PoolID: %s, ShareID: %d, Value: %s}", msg.Owner, msg.PoolID, msg.ShareID, msg.Value)
}
func (msg *MsgRequestRedeem) ProtoMessage() {}
func (msg *MsgRequestRedeem) XXX_MessageName() string {
	return "fundmarket.v1.MsgRequestRedeem"
}
func (msg *MsgRequestRedeem) Route() string { return RouterKey }
func (msg *MsgRequestRedeem) Type() string  { return TypeMsgRequestRedeem }

// ValidateBasic implements sdk.Msg
func (msg *MsgRequestRedeem) ValidateBasic() error {
	if err := validateAddress(msg.Owner, "owner"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return validatePositiveAmount(msg.Value, "value")
}

// GetSigners implements sdk.Msg
func (msg *MsgRequestRedeem) GetSigners() []sdk.AccAddress { return signer(msg.Owner) }

// MsgRequestRedeemResponse returns the redemption position
type MsgRequestRedeemResponse struct {
	RedemptionID uint64 `json:"redemption_id"`
	SlotID       string `json:"slot_id"`
}

func (msg *MsgRequestRedeemResponse) Reset()         { *msg = MsgRequestRedeemResponse{} }
func (msg *MsgRequestRedeemResponse) String() string { return msg.SlotID }
func (msg *MsgRequestRedeemResponse) ProtoMessage()  {}

// ============ MsgRevokeRedeem ============

// MsgRevokeRedeem reverses a redemption while its slot is still open
type MsgRevokeRedeem struct {
	Owner        string `json:"owner"`
	PoolID       string `json:"pool_id"`
	RedemptionID uint64 `json:"redemption_id"`
}

func (msg *MsgRevokeRedeem) Reset()         { *msg = MsgRevokeRedeem{} }
func (msg *MsgRevokeRedeem) String() string { return fmt.Sprintf("MsgRevokeRedeem{%s, %d}", msg.PoolID, msg.RedemptionID) }
func (msg *MsgRevokeRedeem) ProtoMessage()  {}
func (msg *MsgRevokeRedeem) XXX_MessageName() string {
	return "fundmarket.v1.MsgRevokeRedeem"
}
func (msg *MsgRevokeRedeem) Route() string { return RouterKey }
func (msg *MsgRevokeRedeem) Type() string  { return TypeMsgRevokeRedeem }

// ValidateBasic implements sdk.Msg
func (msg *MsgRevokeRedeem) ValidateBasic() error {
	if err := validateAddress(msg.Owner, "owner"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.RedemptionID == 0 {
		return ErrRedemptionNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg *MsgRevokeRedeem) GetSigners() []sdk.AccAddress { return signer(msg.Owner) }

// MsgRevokeRedeemResponse returns the share position credited back
type MsgRevokeRedeemResponse struct {
	ShareID uint64 `json:"share_id"`
}

func (msg *MsgRevokeRedeemResponse) Reset()         { *msg = MsgRevokeRedeemResponse{} }
func (msg *MsgRevokeRedeemResponse) String() string { return fmt.Sprintf("%d", msg.ShareID) }
func (msg *MsgRevokeRedeemResponse) ProtoMessage()  {}

// ============ MsgCloseRedeemSlot ============

// MsgCloseRedeemSlot closes the pool's current slot and opens the next one
type MsgCloseRedeemSlot struct {
	Manager string `json:"manager"`
	PoolID  string `json:"pool_id"`
}

func (msg *MsgCloseRedeemSlot) Reset()         { *msg = MsgCloseRedeemSlot{} }
func (msg *MsgCloseRedeemSlot) String() string { return fmt.Sprintf("MsgCloseRedeemSlot{%s}", msg.PoolID) }
func (msg *MsgCloseRedeemSlot) ProtoMessage()  {}
func (msg *MsgCloseRedeemSlot) XXX_MessageName() string {
	return "fundmarket.v1.MsgCloseRedeemSlot"
}
func (msg *MsgCloseRedeemSlot) Route() string { return RouterKey }
func (msg *MsgCloseRedeemSlot) Type() string  { return TypeMsgCloseRedeemSlot }

// ValidateBasic implements sdk.Msg
func (msg *MsgCloseRedeemSlot) ValidateBasic() error {
	if err := validateAddress(msg.Manager, "manager"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg *MsgCloseRedeemSlot) GetSigners() []sdk.AccAddress { return signer(msg.Manager) }

// MsgCloseRedeemSlotResponse returns the closed and the newly opened slot
type MsgCloseRedeemSlotResponse struct {
	ClosedSlotID string `json:"closed_slot_id"`
	NextSlotID   string `json:"next_slot_id"`
}

func (msg *MsgCloseRedeemSlotResponse) Reset()         { *msg = MsgCloseRedeemSlotResponse{} }
func (msg *MsgCloseRedeemSlotResponse) String() string { return msg.ClosedSlotID }
func (msg *MsgCloseRedeemSlotResponse) ProtoMessage()  {}

// ============ MsgSetRedeemNav ============

// MsgSetRedeemNav prices a closed slot
type MsgSetRedeemNav struct {
	Manager            string `json:"manager"`
	PoolID             string `json:"pool_id"`
	SlotID             string `json:"slot_id"`
	Nav                string `json:"nav"`
	RepaidBalanceAtSet string `json:"repaid_balance_at_set"`
}

func (msg *MsgSetRedeemNav) Reset()         { *msg = MsgSetRedeemNav{} }
func (msg *MsgSetRedeemNav) String() string { return fmt.Sprintf("MsgSetRedeemNav{%s, %s}", msg.SlotID, msg.Nav) }
func (msg *MsgSetRedeemNav) ProtoMessage()  {}
func (msg *MsgSetRedeemNav) XXX_MessageName() string {
	return "fundmarket.v1.MsgSetRedeemNav"
}
func (msg *MsgSetRedeemNav) Route() string { return RouterKey }
func (msg *MsgSetRedeemNav) Type() string  { return TypeMsgSetRedeemNav }

// ValidateBasic implements sdk.Msg
func (msg *MsgSetRedeemNav) ValidateBasic() error {
	if err := validateAddress(msg.Manager, "manager"); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.SlotID == "" {
		return ErrSlotNotFound
	}
	if err := validatePositiveAmount(msg.Nav, "nav"); err != nil {
		return err
	}
	if msg.RepaidBalanceAtSet == "" {
		return nil
	}
	_, err := ParseAmount(msg.RepaidBalanceAtSet)
	return err
}

// GetSigners implements sdk.Msg
func (msg *MsgSetRedeemNav) GetSigners() []sdk.AccAddress { return signer(msg.Manager) }

// MsgSetRedeemNavResponse returns the pricing outcome
type MsgSetRedeemNavResponse struct {
	PerUnitNav  string `json:"per_unit_nav"`
	CarryAmount string `json:"carry_amount"`
}

func (msg *MsgSetRedeemNavResponse) Reset()         { *msg = MsgSetRedeemNavResponse{} }
func (msg *MsgSetRedeemNavResponse) String() string { return msg.PerUnitNav }
func (msg *MsgSetRedeemNavResponse) ProtoMessage()  {}

// ============ MsgRepay ============

// MsgRepay escrows currency into a priced slot
type MsgRepay struct {
	Payer    string `json:"payer"`
	SlotID   string `json:"slot_id"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

func (msg *MsgRepay) Reset()         { *msg = MsgRepay{} }
func (msg *MsgRepay) String() string { return fmt.Sprintf("MsgRepay{%s, %s%s}", msg.SlotID, msg.Amount, msg.Currency) }
func (msg *MsgRepay) ProtoMessage()  {}
func (msg *MsgRepay) XXX_MessageName() string {
	return "fundmarket.v1.MsgRepay"
}
func (msg *MsgRepay) Route() string { return RouterKey }
func (msg *MsgRepay) Type() string  { return TypeMsgRepay }

// ValidateBasic implements sdk.Msg
func (msg *MsgRepay) ValidateBasic() error {
	if err := validateAddress(msg.Payer, "payer"); err != nil {
		return err
	}
	if msg.SlotID == "" {
		return ErrSlotNotFound
	}
	if err := sdk.ValidateDenom(msg.Currency); err != nil {
		return errorsmod.Wrap(ErrCurrencyMismatch, err.Error())
	}
	return validatePositiveAmount(msg.Amount, "amount")
}

// GetSigners implements sdk.Msg
func (msg *MsgRepay) GetSigners() []sdk.AccAddress { return signer(msg.Payer) }

// MsgRepayResponse returns the escrow balance after repayment
type MsgRepayResponse struct {
	EscrowBalance string `json:"escrow_balance"`
}

func (msg *MsgRepayResponse) Reset()         { *msg = MsgRepayResponse{} }
func (msg *MsgRepayResponse) String() string { return msg.EscrowBalance }
func (msg *MsgRepayResponse) ProtoMessage()  {}

// ============ MsgClaim ============

// MsgClaim redeems Value of a priced redemption and pays Recipient,
// or Owner when Recipient is empty
type MsgClaim struct {
	Owner        string `json:"owner"`
	Recipient    string `json:"recipient"`
	RedemptionID uint64 `json:"redemption_id"`
	Currency     string `json:"currency"`
	Value        string `json:"value"`
}

func (msg *MsgClaim) Reset() { *msg = MsgClaim{} }
func (msg *MsgClaim) String() string {
	return fmt.Sprintf("MsgClaim{Owner: %s, RedemptionID: %d, Value: %s}", msg.Owner, msg.RedemptionID, msg.Value)
}
func (msg *MsgClaim) ProtoMessage() {}
func (msg *MsgClaim) XXX_MessageName() string {
	return "fundmarket.v1.MsgClaim"
}
func (msg *MsgClaim) Route() string { return RouterKey }
func (msg *MsgClaim) Type() string  { return TypeMsgClaim }

// ValidateBasic implements sdk.Msg
func (msg *MsgClaim) ValidateBasic() error {
	if err := validateAddress(msg.Owner, "owner"); err != nil {
		return err
	}
	if msg.Recipient != "" {
		if err := validateAddress(msg.Recipient, "recipient"); err != nil {
			return err
		}
	}
	if msg.RedemptionID == 0 {
		return ErrRedemptionNotFound
	}
	return validatePositiveAmount(msg.Value, "value")
}

// GetSigners implements sdk.Msg
func (msg *MsgClaim) GetSigners() []sdk.AccAddress { return signer(msg.Owner) }

// MsgClaimResponse returns the currency paid
type MsgClaimResponse struct {
	CurrencyAmount string `json:"currency_amount"`
}

func (msg *MsgClaimResponse) Reset()         { *msg = MsgClaimResponse{} }
func (msg *MsgClaimResponse) String() string { return msg.CurrencyAmount }
func (msg *MsgClaimResponse) ProtoMessage()  {}
