package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/openalpha/fundmarket/x/valueledger/types"
)

// GetTxCmd returns the transaction commands for the valueledger module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Value ledger transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdRegisterLedger(),
		CmdTransferPosition(),
	)

	return cmd
}

// CmdRegisterLedger returns the command to register a ledger
func CmdRegisterLedger() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register-ledger [ref] [decimals] [denom1,denom2,...]",
		Short: "Register a value ledger (authority only)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			decimals, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid decimals: %v", err)
			}
			var currencies []string
			if len(args) == 3 && args[2] != "" {
				currencies = strings.Split(args[2], ",")
			}

			msg := &types.MsgRegisterLedger{
				Authority: clientCtx.GetFromAddress().String(),
				Ledger: types.Ledger{
					Ref:               args[0],
					Decimals:          uint32(decimals),
					AllowedCurrencies: currencies,
				},
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdTransferPosition returns the command to hand a position to another owner
func CmdTransferPosition() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer [ledger] [position-id] [recipient]",
		Short: "Transfer a whole position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			positionID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid position id: %v", err)
			}

			msg := &types.MsgTransferPosition{
				Owner:      clientCtx.GetFromAddress().String(),
				Ledger:     args[0],
				PositionID: positionID,
				Recipient:  args[2],
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
