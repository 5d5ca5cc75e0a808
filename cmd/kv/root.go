package kv

import (
	"github.com/spf13/cobra"

	"github.com/fwdslash/dynkv/cmd/util"
	"github.com/fwdslash/dynkv/lib/dynkv"
	"github.com/fwdslash/dynkv/lib/host"
	"github.com/fwdslash/dynkv/lib/host/bolthost"
	"github.com/fwdslash/dynkv/lib/logger"
)

var (
	kvStore dynkv.IStore
	kvBag   *bolthost.Bag

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value store operations on one owner",
		PersistentPreRunE:  setupStore,
		PersistentPostRunE: teardownStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common store flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(pushCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(bytesCmd)
	KeyValueCommands.AddCommand(entriesCmd)
	KeyValueCommands.AddCommand(resetCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupStore opens the property bag for the configured owner and binds a
// store to it
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetStoreConfig()

	if err := logger.Init(config.LogLevel); err != nil {
		return err
	}

	kind, err := host.ParseOwnerKind(config.OwnerKind)
	if err != nil {
		return err
	}

	kvBag, err = bolthost.Open(config.DBPath, config.OwnerID, &bolthost.Options{
		Kind: kind,
		Limits: host.Limits{
			MaxSlotBytes:  config.MaxSlotBytes,
			MaxTotalBytes: config.MaxTotalBytes,
		},
	})
	if err != nil {
		return err
	}

	kvStore = dynkv.New(kvBag, nil)
	return nil
}

// teardownStore releases the property bag
func teardownStore(_ *cobra.Command, _ []string) error {
	if kvBag == nil {
		return nil
	}
	return kvBag.Close()
}
