package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cairn-systems/starkgo/account"
	"github.com/cairn-systems/starkgo/clients/rpc"
	"github.com/cairn-systems/starkgo/core"
	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/cairn-systems/starkgo/signer"
	"github.com/cairn-systems/starkgo/txnbuild"
	"github.com/cairn-systems/starkgo/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	contractF = "contract"
	functionF = "function"
	calldataF = "calldata"
	waitF     = "wait"
)

func newSelectorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selector <name>...",
		Short: "Print the entry-point selector of each function name.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Name", "Selector"})
			for _, name := range args {
				table.Append([]string{name, crypto.Selector(name).String()})
			}
			table.Render()
			return nil
		},
	}
}

func newVerifyCmd(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <public-key> <msg-hash> <r> <s>",
		Short: "Check a stark-curve signature against a public key.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			felts := make([]*felt.Felt, len(args))
			for i, arg := range args {
				parsed, err := new(felt.Felt).SetString(arg)
				if err != nil {
					return fmt.Errorf("parsing argument %d: %w", i+1, err)
				}
				felts[i] = parsed
			}

			sig := new(crypto.Signature)
			sig.R.Set(felts[2])
			sig.S.Set(felts[3])
			ok, err := crypto.NewPublicKey(felts[0]).Verify(sig, felts[1])
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("signature is INVALID")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signature is VALID")
			return nil
		},
	}
}

func newEstimateCmd(config *Config) *cobra.Command {
	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the fee of a single contract call.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := utils.NewZapLogger(config.Verbosity, config.Colour)
			if err != nil {
				return err
			}
			provider, err := newProvider(config, log)
			if err != nil {
				return err
			}
			address, call, err := callFromFlags(cmd, config)
			if err != nil {
				return err
			}

			draft, err := txnbuild.BuildInvoke(
				&txnbuild.Intent{SenderAddress: address, Calls: []txnbuild.Call{call}},
				&txnbuild.ChainContext{
					ChainID: config.Network.ChainID(),
					Nonce:   &felt.Zero,
					ResourceBounds: core.ResourceBoundsMap{
						core.ResourceL1Gas: {},
						core.ResourceL2Gas: {},
					},
				},
			)
			if err != nil {
				return err
			}

			estimate, err := provider.EstimateFee(cmd.Context(), draft)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Resource", "Consumed", "Price"})
			table.Append([]string{"l1_gas", estimate.L1GasConsumed.String(), estimate.L1GasPrice.String()})
			table.Append([]string{"l2_gas", estimate.L2GasConsumed.String(), estimate.L2GasPrice.String()})
			if estimate.L1DataGasConsumed != nil {
				table.Append([]string{"l1_data_gas", estimate.L1DataGasConsumed.String(), estimate.L1DataGasPrice.String()})
			}
			table.SetFooter([]string{"overall", estimate.OverallFee.String(), estimate.Unit})
			table.Render()
			return nil
		},
	}
	addCallFlags(estimateCmd)
	return estimateCmd
}

func newInvokeCmd(config *Config) *cobra.Command {
	invokeCmd := &cobra.Command{
		Use:   "invoke",
		Short: "Sign and submit a single contract call.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := utils.NewZapLogger(config.Verbosity, config.Colour)
			if err != nil {
				return err
			}
			provider, err := newProvider(config, log)
			if err != nil {
				return err
			}
			address, call, err := callFromFlags(cmd, config)
			if err != nil {
				return err
			}
			accountSigner, err := newSigner(config, log)
			if err != nil {
				return err
			}

			acc := account.New(address, config.Network.ChainID(), accountSigner, provider,
				&account.Options{Log: log})
			handle, err := acc.Execute(cmd.Context(), []txnbuild.Call{call}, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transaction hash: %s\n", handle.TransactionHash)

			wait, err := cmd.Flags().GetDuration(waitF)
			if err != nil || wait <= 0 {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()
			receipt, err := handle.Wait(ctx, 5*time.Second)
			if err != nil {
				return err
			}

			execution, _ := receipt.ExecutionStatus.MarshalText()
			finality, _ := receipt.FinalityStatus.MarshalText()
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Finality", "Execution", "Actual fee"})
			table.Append([]string{string(finality), string(execution), receipt.ActualFee.String()})
			table.Render()
			return nil
		},
	}
	addCallFlags(invokeCmd)
	invokeCmd.Flags().Duration(waitF, 0, "How long to wait for the receipt. 0 returns immediately.")
	return invokeCmd
}

func addCallFlags(cmd *cobra.Command) {
	cmd.Flags().String(contractF, "", "Address of the contract to call.")
	cmd.Flags().String(functionF, "", "Entry-point name to invoke.")
	cmd.Flags().StringSlice(calldataF, nil, "Felt arguments of the call.")
	for _, flag := range []string{contractF, functionF} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
}

func callFromFlags(cmd *cobra.Command, config *Config) (*felt.Felt, txnbuild.Call, error) {
	if config.AccountAddress == "" {
		return nil, txnbuild.Call{}, errors.New("account-address is required")
	}
	address, err := new(felt.Felt).SetString(config.AccountAddress)
	if err != nil {
		return nil, txnbuild.Call{}, fmt.Errorf("parsing account-address: %w", err)
	}

	contract, err := cmd.Flags().GetString(contractF)
	if err != nil {
		return nil, txnbuild.Call{}, err
	}
	contractAddress, err := new(felt.Felt).SetString(contract)
	if err != nil {
		return nil, txnbuild.Call{}, fmt.Errorf("parsing contract: %w", err)
	}
	function, err := cmd.Flags().GetString(functionF)
	if err != nil {
		return nil, txnbuild.Call{}, err
	}
	rawCalldata, err := cmd.Flags().GetStringSlice(calldataF)
	if err != nil {
		return nil, txnbuild.Call{}, err
	}

	calldata := make([]*felt.Felt, len(rawCalldata))
	for i, raw := range rawCalldata {
		if calldata[i], err = new(felt.Felt).SetString(raw); err != nil {
			return nil, txnbuild.Call{}, fmt.Errorf("parsing calldata[%d]: %w", i, err)
		}
	}
	return address, txnbuild.NewCall(contractAddress, function, calldata...), nil
}

func newProvider(config *Config, log utils.SimpleLogger) (*rpc.Client, error) {
	return rpc.NewClient(rpc.Options{URL: config.RPCURL, Log: log})
}

func newSigner(config *Config, log utils.SimpleLogger) (signer.Signer, error) {
	if config.SignerURL != "" {
		return signer.NewRemote(config.SignerURL, log), nil
	}
	if config.PrivateKey == "" {
		return nil, errors.New("either signer-url or private-key is required")
	}
	return signer.NewLocal(config.PrivateKey)
}
