package fundmarket

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"
	"github.com/spf13/cobra"

	"github.com/openalpha/fundmarket/x/fundmarket/client/cli"
	"github.com/openalpha/fundmarket/x/fundmarket/keeper"
	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for fundmarket
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgUpdateParams{}, "fundmarket/MsgUpdateParams", nil)
	cdc.RegisterConcrete(&types.MsgCreatePool{}, "fundmarket/MsgCreatePool", nil)
	cdc.RegisterConcrete(&types.MsgUpdateWhitelist{}, "fundmarket/MsgUpdateWhitelist", nil)
	cdc.RegisterConcrete(&types.MsgSubscribe{}, "fundmarket/MsgSubscribe", nil)
	cdc.RegisterConcrete(&types.MsgSetSubscribeNav{}, "fundmarket/MsgSetSubscribeNav", nil)
	cdc.RegisterConcrete(&types.MsgRequestRedeem{}, "fundmarket/MsgRequestRedeem", nil)
	cdc.RegisterConcrete(&types.MsgRevokeRedeem{}, "fundmarket/MsgRevokeRedeem", nil)
	cdc.RegisterConcrete(&types.MsgCloseRedeemSlot{}, "fundmarket/MsgCloseRedeemSlot", nil)
	cdc.RegisterConcrete(&types.MsgSetRedeemNav{}, "fundmarket/MsgSetRedeemNav", nil)
	cdc.RegisterConcrete(&types.MsgRepay{}, "fundmarket/MsgRepay", nil)
	cdc.RegisterConcrete(&types.MsgClaim{}, "fundmarket/MsgClaim", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	types.RegisterInterfaces(registry)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	bz, _ := json.Marshal(types.DefaultGenesis())
	return bz
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	if len(bz) == 0 {
		return nil
	}
	var gs types.GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return err
	}
	return gs.Validate()
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module.
// Reads are served by the REST API in api/ instead.
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {}

// GetTxCmd returns the root tx command
func (AppModuleBasic) GetTxCmd() *cobra.Command {
	return cli.GetTxCmd()
}

// GetQueryCmd returns the root query command
func (AppModuleBasic) GetQueryCmd() *cobra.Command {
	return cli.GetQueryCmd()
}

// AppModule implements an application module for the fundmarket module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services
func (am AppModule) RegisterServices(cfg module.Configurator) {
	types.RegisterMsgServer(cfg.MsgServer(), keeper.NewMsgServerImpl(am.keeper))
}

// InitGenesis loads the module state from raw genesis bytes
func (am AppModule) InitGenesis(ctx sdk.Context, cdc codec.JSONCodec, bz json.RawMessage) {
	gs := types.DefaultGenesis()
	if len(bz) > 0 {
		if err := json.Unmarshal(bz, gs); err != nil {
			panic(err)
		}
	}
	am.keeper.InitGenesis(ctx, *gs)
}

// ExportGenesis returns the module state as raw genesis bytes
func (am AppModule) ExportGenesis(ctx sdk.Context, cdc codec.JSONCodec) json.RawMessage {
	bz, _ := json.Marshal(am.keeper.ExportGenesis(ctx))
	return bz
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}
