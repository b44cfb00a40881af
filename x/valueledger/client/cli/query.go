package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"

	"github.com/openalpha/fundmarket/x/valueledger/types"
)

// GetQueryCmd returns the cli query commands for the valueledger module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the valueledger module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryLedger(),
		CmdQueryPosition(),
	)

	return cmd
}

// CmdQueryLedger returns the command to query a ledger
func CmdQueryLedger() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger [ref]",
		Short: "Query a registered ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			var ledger types.Ledger
			if err := queryValue(clientCtx, types.LedgerKey(args[0]), &ledger); err != nil {
				return err
			}
			return printJSON(ledger)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryPosition returns the command to query a position
func CmdQueryPosition() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position [ledger] [position-id]",
		Short: "Query a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			positionID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid position id: %v", err)
			}

			var position types.Position
			if err := queryValue(clientCtx, types.PositionKey(args[0], positionID), &position); err != nil {
				return err
			}
			return printJSON(position)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

func queryValue(clientCtx client.Context, key []byte, out interface{}) error {
	bz, _, err := clientCtx.QueryStore(key, types.StoreKey)
	if err != nil {
		return err
	}
	if len(bz) == 0 {
		return fmt.Errorf("not found: %X", key)
	}
	return json.Unmarshal(bz, out)
}

func printJSON(v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
