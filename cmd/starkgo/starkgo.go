package main

import (
	"github.com/cairn-systems/starkgo/utils"
	"github.com/davecgh/go-spew/spew"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version string

const (
	configF         = "config"
	verbosityF      = "verbosity"
	colourF         = "colour"
	networkF        = "network"
	rpcURLF         = "rpc-url"
	accountAddressF = "account-address"
	privateKeyF     = "private-key"
	signerURLF      = "signer-url"
	debugF          = "debug"

	defaultConfig = ""
	defaultColour = true
	defaultRPCURL = "http://localhost:6060"
	defaultDebug  = false

	configFlagUsage     = "The yaml configuration file."
	verbosityFlagUsage  = "Verbosity of the logs. Options: debug, info, warn, error."
	colourUsage         = "Uses colour in the logs."
	networkUsage        = "The network to submit to. Options: mainnet, sepolia, sepolia-integration."
	rpcURLUsage         = "The JSON-RPC endpoint of a node."
	accountAddressUsage = "The address of the account contract."
	privateKeyUsage     = "Hex-encoded private key scalar for local signing."
	signerURLUsage      = "URL of a remote signing service. Takes precedence over private-key."
	debugUsage          = "Dumps the resolved configuration before running."
)

// Config collects everything the subcommands need, populated from flags and
// the optional yaml config file.
type Config struct {
	Verbosity      utils.LogLevel `mapstructure:"verbosity"`
	Colour         bool           `mapstructure:"colour"`
	Network        utils.Network  `mapstructure:"network"`
	RPCURL         string         `mapstructure:"rpc-url"`
	AccountAddress string         `mapstructure:"account-address"`
	PrivateKey     string         `mapstructure:"private-key"`
	SignerURL      string         `mapstructure:"signer-url"`
	Debug          bool           `mapstructure:"debug"`
}

func NewCmd() *cobra.Command {
	var cfgFile string
	config := new(Config)

	rootCmd := &cobra.Command{
		Use:     "starkgo [command]",
		Short:   "Starknet transaction tooling in Go.",
		Version: Version,
	}

	defaultVerbosity := utils.INFO
	defaultNetwork := utils.Sepolia
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, configF, defaultConfig, configFlagUsage)
	flags.Var(&defaultVerbosity, verbosityF, verbosityFlagUsage)
	flags.Bool(colourF, defaultColour, colourUsage)
	flags.Var(&defaultNetwork, networkF, networkUsage)
	flags.String(rpcURLF, defaultRPCURL, rpcURLUsage)
	flags.String(accountAddressF, "", accountAddressUsage)
	flags.String(privateKeyF, "", privateKeyUsage)
	flags.String(signerURLF, "", signerURLUsage)
	flags.Bool(debugF, defaultDebug, debugUsage)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		v := viper.New()
		if cfgFile != "" {
			v.SetConfigType("yaml")
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
		}
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		if err := v.Unmarshal(config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		))); err != nil {
			return err
		}

		if config.Debug {
			spew.Fdump(cmd.ErrOrStderr(), config)
		}
		return nil
	}

	rootCmd.AddCommand(
		newSelectorCmd(),
		newVerifyCmd(config),
		newEstimateCmd(config),
		newInvokeCmd(config),
	)
	return rootCmd
}
