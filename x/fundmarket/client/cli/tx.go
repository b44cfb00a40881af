package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

const (
	flagPositionID   = "position-id"
	flagRedemptionID = "redemption-id"
	flagDeadline     = "deadline"
	flagRepaid       = "repaid-balance"
	flagRecipient    = "recipient"
)

// defaultDeadline bounds how long a subscription tx stays valid when no
// explicit deadline is given
const defaultDeadline = 10 * time.Minute

// GetTxCmd returns the transaction commands for the fundmarket module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Fund market transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdCreatePool(),
		CmdUpdateWhitelist(),
		CmdSubscribe(),
		CmdSetSubscribeNav(),
		CmdRequestRedeem(),
		CmdRevokeRedeem(),
		CmdCloseSlot(),
		CmdSetRedeemNav(),
		CmdRepay(),
		CmdClaim(),
	)

	return cmd
}

// CmdCreatePool returns the command to create a pool from a JSON config file
func CmdCreatePool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool [config-file]",
		Short: "Create a pool from a JSON pool config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			bz, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var config types.PoolConfig
			if err := json.Unmarshal(bz, &config); err != nil {
				return fmt.Errorf("invalid pool config: %w", err)
			}

			msg := &types.MsgCreatePool{
				Creator: clientCtx.GetFromAddress().String(),
				Config:  config,
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdUpdateWhitelist returns the command to replace a pool whitelist
func CmdUpdateWhitelist() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-whitelist [pool-id] [addr1,addr2,...]",
		Short: "Replace the whitelist of a pool",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			var whitelist []string
			if len(args) == 2 && args[1] != "" {
				whitelist = strings.Split(args[1], ",")
			}

			msg := &types.MsgUpdateWhitelist{
				Manager:   clientCtx.GetFromAddress().String(),
				PoolID:    args[0],
				Whitelist: whitelist,
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSubscribe returns the command to subscribe currency into a pool
func CmdSubscribe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribe [pool-id] [amount]",
		Short: "Subscribe currency into a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			positionID, _ := cmd.Flags().GetUint64(flagPositionID)
			deadline, _ := cmd.Flags().GetInt64(flagDeadline)
			if deadline == 0 {
				deadline = time.Now().Add(defaultDeadline).Unix()
			}

			msg := &types.MsgSubscribe{
				Buyer:      clientCtx.GetFromAddress().String(),
				PoolID:     args[0],
				Amount:     args[1],
				PositionID: positionID,
				Deadline:   deadline,
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().Uint64(flagPositionID, 0, "Existing share position to top up")
	cmd.Flags().Int64(flagDeadline, 0, "Unix deadline after which the subscription is rejected")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetSubscribeNav returns the command to append a subscribe NAV checkpoint
func CmdSetSubscribeNav() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-subscribe-nav [pool-id] [timestamp] [nav]",
		Short: "Append a subscribe NAV checkpoint (6 decimals)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			timestamp, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %v", err)
			}

			msg := &types.MsgSetSubscribeNav{
				Manager:   clientCtx.GetFromAddress().String(),
				PoolID:    args[0],
				Timestamp: timestamp,
				Nav:       args[2],
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRequestRedeem returns the command to move share value into the open slot
func CmdRequestRedeem() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request-redeem [pool-id] [share-id] [value]",
		Short: "Request redemption of share value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			shareID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid share id: %v", err)
			}
			redemptionID, _ := cmd.Flags().GetUint64(flagRedemptionID)

			msg := &types.MsgRequestRedeem{
				Owner:        clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
				ShareID:      shareID,
				RedemptionID: redemptionID,
				Value:        args[2],
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().Uint64(flagRedemptionID, 0, "Existing redemption in the open slot to add to")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRevokeRedeem returns the command to revoke a pending redemption
func CmdRevokeRedeem() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke-redeem [pool-id] [redemption-id]",
		Short: "Return a pending redemption to a share position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			redemptionID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid redemption id: %v", err)
			}

			msg := &types.MsgRevokeRedeem{
				Owner:        clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
				RedemptionID: redemptionID,
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdCloseSlot returns the command to close the pool's open redeem slot
func CmdCloseSlot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close-slot [pool-id]",
		Short: "Close the current redeem slot and open the next one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgCloseRedeemSlot{
				Manager: clientCtx.GetFromAddress().String(),
				PoolID:  args[0],
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetRedeemNav returns the command to price a closed slot
func CmdSetRedeemNav() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-redeem-nav [pool-id] [slot-id] [nav]",
		Short: "Set the redemption NAV of a closed slot (6 decimals)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			repaid, _ := cmd.Flags().GetString(flagRepaid)
			msg := &types.MsgSetRedeemNav{
				Manager:            clientCtx.GetFromAddress().String(),
				PoolID:             args[0],
				SlotID:             args[1],
				Nav:                args[2],
				RepaidBalanceAtSet: repaid,
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagRepaid, "", "Currency balance reported for the slot at pricing time")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRepay returns the command to escrow currency into a priced slot
func CmdRepay() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repay [slot-id] [currency] [amount]",
		Short: "Repay currency into a priced slot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgRepay{
				Payer:    clientCtx.GetFromAddress().String(),
				SlotID:   args[0],
				Currency: args[1],
				Amount:   args[2],
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClaim returns the command to claim currency for redeemed value
func CmdClaim() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim [redemption-id] [currency] [value]",
		Short: "Claim currency for value of a priced redemption",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			redemptionID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid redemption id: %v", err)
			}
			owner := clientCtx.GetFromAddress().String()
			recipient, _ := cmd.Flags().GetString(flagRecipient)
			if recipient == "" {
				recipient = owner
			}

			msg := &types.MsgClaim{
				Owner:        owner,
				Recipient:    recipient,
				RedemptionID: redemptionID,
				Currency:     args[1],
				Value:        args[2],
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagRecipient, "", "Address receiving the currency (defaults to the signer)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
