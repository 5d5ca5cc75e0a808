package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fwdslash/dynkv/lib/host"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the common store flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "db"
	cmd.PersistentFlags().String(key, "dynkv.db", WrapString("Path to the property database file"))

	key = "owner"
	cmd.PersistentFlags().String(key, "world", WrapString("Id of the owner whose store to open"))

	key = "owner-kind"
	cmd.PersistentFlags().String(key, "world", WrapString("Kind of the owner (world, actor, player)"))

	key = "max-slot-bytes"
	cmd.PersistentFlags().Int(key, host.DefaultLimits().MaxSlotBytes, WrapString("Per-slot byte ceiling of the property bag"))

	key = "max-total-bytes"
	cmd.PersistentFlags().Int(key, host.DefaultLimits().MaxTotalBytes, WrapString("Per-owner byte ceiling of the property bag"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "error", WrapString("Diagnostic log level (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("dynkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds all flags of a command to viper
func BindCommandFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.PersistentFlags())
}

// StoreConfig holds everything needed to open one owner's store.
type StoreConfig struct {
	DBPath        string
	OwnerID       string
	OwnerKind     string
	MaxSlotBytes  int
	MaxTotalBytes int
	LogLevel      string
}

// String returns a human-readable representation of the configuration
func (c *StoreConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Store Configuration")
	addField("Database", c.DBPath)
	addField("Owner", c.OwnerID)
	addField("Owner Kind", c.OwnerKind)

	addSection("Limits")
	addField("Max Slot Bytes", strconv.Itoa(c.MaxSlotBytes))
	addField("Max Total Bytes", strconv.Itoa(c.MaxTotalBytes))

	return sb.String()
}

// GetStoreConfig reads the store configuration from viper
func GetStoreConfig() *StoreConfig {
	return &StoreConfig{
		DBPath:        viper.GetString("db"),
		OwnerID:       viper.GetString("owner"),
		OwnerKind:     viper.GetString("owner-kind"),
		MaxSlotBytes:  viper.GetInt("max-slot-bytes"),
		MaxTotalBytes: viper.GetInt("max-total-bytes"),
		LogLevel:      viper.GetString("log-level"),
	}
}
