package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// GetQueryCmd returns the cli query commands for the fundmarket module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the fundmarket module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryPool(),
		CmdQueryPools(),
		CmdQuerySlot(),
		CmdQueryNav(),
		CmdQueryParams(),
	)

	return cmd
}

// CmdQueryPool returns the command to query a pool
func CmdQueryPool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool [pool-id]",
		Short: "Query a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			var pool types.Pool
			if err := queryValue(clientCtx, types.PoolKey(args[0]), &pool); err != nil {
				return err
			}
			return printJSON(pool)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryPools returns the command to list all pools
func CmdQueryPools() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "Query all pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			pairs, err := querySubspace(clientCtx, types.PoolKeyPrefix)
			if err != nil {
				return err
			}
			pools := make([]types.Pool, 0, len(pairs))
			for _, pair := range pairs {
				var pool types.Pool
				if err := json.Unmarshal(pair.Value, &pool); err != nil {
					continue
				}
				pools = append(pools, pool)
			}
			return printJSON(pools)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQuerySlot returns the command to query a redeem slot
func CmdQuerySlot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot [slot-id]",
		Short: "Query a redeem slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			var slot types.RedeemSlot
			if err := queryValue(clientCtx, types.RedeemSlotKey(args[0]), &slot); err != nil {
				return err
			}
			return printJSON(slot)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryNav returns the command to query the subscribe NAV in force
func CmdQueryNav() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav [pool-id] [unix-time]",
		Short: "Query the subscribe NAV in force at a time (defaults to now)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			at := time.Now().Unix()
			if len(args) == 2 {
				if at, err = strconv.ParseInt(args[1], 10, 64); err != nil {
					return fmt.Errorf("invalid time: %v", err)
				}
			}

			pairs, err := querySubspace(clientCtx, types.NavCheckpointPrefix(args[0]))
			if err != nil {
				return err
			}
			checkpoint, ok := checkpointAt(pairs, at)
			if !ok {
				return types.ErrNavNotFound
			}
			return printJSON(checkpoint)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryParams returns the command to query the module params
func CmdQueryParams() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Query the module params",
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			params := types.DefaultParams()
			if err := queryValue(clientCtx, types.ParamsKey, &params); err != nil && !errors.Is(err, errNotFound) {
				return err
			}
			return printJSON(params)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

var errNotFound = types.ErrNotFound

func queryValue(clientCtx client.Context, key []byte, out interface{}) error {
	bz, _, err := clientCtx.QueryStore(key, types.StoreKey)
	if err != nil {
		return err
	}
	if len(bz) == 0 {
		return errNotFound
	}
	return json.Unmarshal(bz, out)
}

// storePair is one entry of a store subspace query
type storePair struct {
	Key   []byte
	Value []byte
}

func querySubspace(clientCtx client.Context, prefix []byte) ([]storePair, error) {
	res, err := clientCtx.QueryABCI(abci.RequestQuery{
		Path: fmt.Sprintf("/store/%s/subspace", types.StoreKey),
		Data: prefix,
	})
	if err != nil {
		return nil, err
	}
	return decodePairs(res.Value)
}

// decodePairs reads the protobuf encoded kv pairs returned by the store
// subspace query: repeated Pair pairs = 1, Pair{bytes key = 1; bytes value = 2}
func decodePairs(bz []byte) ([]storePair, error) {
	var pairs []storePair
	err := consumeFields(bz, func(num protowire.Number, field []byte) error {
		if num != 1 {
			return nil
		}
		var pair storePair
		if err := consumeFields(field, func(num protowire.Number, v []byte) error {
			switch num {
			case 1:
				pair.Key = v
			case 2:
				pair.Value = v
			}
			return nil
		}); err != nil {
			return err
		}
		pairs = append(pairs, pair)
		return nil
	})
	return pairs, err
}

// consumeFields calls fn for every length-delimited field in bz and skips the rest
func consumeFields(bz []byte, fn func(protowire.Number, []byte) error) error {
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return protowire.ParseError(n)
		}
		bz = bz[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, bz)
			if n < 0 {
				return protowire.ParseError(n)
			}
			bz = bz[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(bz)
		if n < 0 {
			return protowire.ParseError(n)
		}
		bz = bz[n:]
		if err := fn(num, v); err != nil {
			return err
		}
	}
	return nil
}

// checkpointAt picks the latest checkpoint not after at, or the first one
// when at precedes them all. Pairs arrive in key order.
func checkpointAt(pairs []storePair, at int64) (types.NavCheckpoint, bool) {
	var best types.NavCheckpoint
	found := false
	for _, pair := range pairs {
		var checkpoint types.NavCheckpoint
		if err := json.Unmarshal(pair.Value, &checkpoint); err != nil {
			continue
		}
		if !found || checkpoint.Timestamp <= at {
			best, found = checkpoint, true
		}
		if checkpoint.Timestamp > at {
			break
		}
	}
	return best, found
}

func printJSON(v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
