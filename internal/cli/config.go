package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Kavirubc/ticketrag/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfgPath := config.FindConfigPath(cfgFile)
			if cfgPath == "" {
				fmt.Fprintln(out, "No config file found, validating defaults")
			} else {
				fmt.Fprintf(out, "Validating config: %s\n", cfgPath)
			}

			cfg, err := config.LoadOrDefault(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			errs := config.Validate(cfg)
			if len(errs) > 0 {
				fmt.Fprintln(out, "\nValidation errors:")
				for _, e := range errs {
					fmt.Fprintf(out, "  - %v\n", e)
				}
				return errors.New("configuration is invalid")
			}

			fmt.Fprintln(out, "\nConfiguration is valid!")
			fmt.Fprintf(out, "  - Index: %s (%s)\n", cfg.Index.Backend, indexLocation(cfg))
			fmt.Fprintf(out, "  - Embedding: %s %s (%d dims)\n",
				cfg.Embedding.Primary.Provider, cfg.Embedding.Primary.Model, cfg.Embedding.Primary.Dimensions)
			fmt.Fprintf(out, "  - Generator: %s %s\n", cfg.LLM.Provider, cfg.LLM.Model)
			fmt.Fprintf(out, "  - Thresholds: similarity > %.2f, context >= %d chars\n",
				cfg.Context.MinSimilarity, cfg.Context.MinContextChars)
			fmt.Fprintf(out, "  - Categories: %d configured\n", len(cfg.Categories))

			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(config.FindConfigPath(cfgFile))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			redacted := *cfg
			redacted.Qdrant.APIKey = redact(cfg.Qdrant.APIKey)
			redacted.Embedding.Primary.APIKey = redact(cfg.Embedding.Primary.APIKey)
			redacted.Embedding.Fallback.APIKey = redact(cfg.Embedding.Fallback.APIKey)
			redacted.LLM.APIKey = redact(cfg.LLM.APIKey)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(&redacted)
		},
	}
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func indexLocation(cfg *config.Config) string {
	if cfg.Index.Backend == "qdrant" {
		return cfg.Qdrant.URL + " / " + cfg.Index.Collection
	}
	return cfg.Index.Path
}
