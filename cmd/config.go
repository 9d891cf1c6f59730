package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thomascherickal/june/internal/june/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: configfile, backend, model, base_url, device, system_prompt, bos_token, eos_token, eos_token_id, personadirs, max_contexts, context_ttl

Examples:
  june config               # Show all configuration
  june config model         # Show only model
  june config base_url      # Show only the server address
  june config personadirs   # Show only persona directories`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Load configuration from file
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		// If a field is specified, show only that field
		if len(args) > 0 {
			field := strings.ToLower(args[0])
			switch field {
			case "configfile":
				fmt.Println(viper.ConfigFileUsed())
			case "backend":
				fmt.Println(cfg.Backend)
			case "model":
				fmt.Println(cfg.Model)
			case "base_url", "baseurl":
				fmt.Println(cfg.BaseURL)
			case "device":
				fmt.Println(cfg.Device)
			case "system_prompt", "systemprompt":
				fmt.Println(cfg.SystemPrompt)
			case "bos_token", "bostoken":
				fmt.Println(cfg.BOSToken)
			case "eos_token", "eostoken":
				fmt.Println(cfg.EOSToken)
			case "eos_token_id", "eostokenid":
				fmt.Println(cfg.EOSTokenID)
			case "personadirs":
				// PersonaDirs are already absolute paths
				fmt.Println(strings.Join(cfg.PersonaDirs, ","))
			case "max_contexts", "maxcontexts":
				fmt.Println(cfg.MaxContexts)
			case "context_ttl", "contextttl":
				fmt.Println(cfg.ContextTTL)
			default:
				fmt.Fprintf(os.Stderr, "Unknown field: %s\n", args[0])
				fmt.Fprintf(os.Stderr, "Available fields: configfile, backend, model, base_url, device, system_prompt, bos_token, eos_token, eos_token_id, personadirs, max_contexts, context_ttl\n")
				os.Exit(1)
			}
			return
		}

		// Display all configuration values
		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("Backend: %s\n", cfg.Backend)
		fmt.Printf("Model: %s\n", cfg.Model)
		fmt.Printf("BaseURL: %s\n", cfg.BaseURL)
		fmt.Printf("Device: %s\n", cfg.Device)
		fmt.Printf("SystemPrompt: %s\n", cfg.SystemPrompt)
		fmt.Printf("BOSToken: %s\n", cfg.BOSToken)
		fmt.Printf("EOSToken: %s\n", cfg.EOSToken)
		fmt.Printf("EOSTokenID: %d\n", cfg.EOSTokenID)
		// PersonaDirs are already absolute paths
		fmt.Printf("PersonaDirectories: %s\n", strings.Join(cfg.PersonaDirs, ","))
		fmt.Printf("MaxContexts: %d\n", cfg.MaxContexts)
		fmt.Printf("ContextTTL: %s\n", cfg.ContextTTL)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
