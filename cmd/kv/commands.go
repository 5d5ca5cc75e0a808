package kv

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fwdslash/dynkv/lib/codec"
	"github.com/fwdslash/dynkv/lib/value"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if val, ok := kvStore.Get(key); ok {
				fmt.Printf("key=%s, value=%s\n", key, val.String())
			} else {
				fmt.Printf("key=%s, found=false\n", key)
			}
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [json]",
		Short: "Sets the value for a key from a JSON argument",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			val, err := codec.NewJSONCodec().Decode([]byte(args[1]))
			if err != nil {
				return fmt.Errorf("value must be valid JSON: %w", err)
			}
			if ok := kvStore.Set(key, val); !ok {
				return fmt.Errorf("set failed for key %q", key)
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	pushCmd = &cobra.Command{
		Use:   "push [key] [json]",
		Short: "Shallow-merges a JSON object into the stored value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			val, err := codec.NewJSONCodec().Decode([]byte(args[1]))
			if err != nil {
				return fmt.Errorf("value must be valid JSON: %w", err)
			}
			if ok := kvStore.Push(key, val); !ok {
				return fmt.Errorf("push failed for key %q", key)
			}
			fmt.Println("push successfully")
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if ok := kvStore.Delete(key); ok {
				fmt.Println("delete successfully")
			} else {
				fmt.Printf("key=%s, found=false\n", key)
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			fmt.Printf("key=%s, found=%v\n", key, kvStore.HasKey(key))
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys of the owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := kvStore.Keys()
			for _, key := range keys {
				fmt.Println(key)
			}
			fmt.Printf("%d key(s)\n", len(keys))
			return nil
		},
	}
	bytesCmd = &cobra.Command{
		Use:   "bytes",
		Short: "Prints the byte count currently used by the owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%d bytes\n", kvStore.Bytes())
			return nil
		},
	}
	entriesCmd = &cobra.Command{
		Use:   "entries",
		Short: "Lists all key value pairs of the owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 0
			kvStore.ForEach(func(val value.Value, key string) {
				fmt.Printf("key=%s, value=%s\n", key, val.String())
				count++
			})
			fmt.Printf("%d entry(s)\n", count)
			return nil
		},
	}
	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Removes all entries of the owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kvStore.Reset()
			fmt.Println("reset successfully")
			return nil
		},
	}
)
