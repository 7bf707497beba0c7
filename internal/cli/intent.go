package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"productshots/internal/infra"
	"productshots/internal/intent"
)

// IntentCmd prints the signals a request's free text resolves to.
func IntentCmd() *cobra.Command {
	var fields intent.Fields
	cmd := &cobra.Command{
		Use:   "intent [notes...]",
		Short: "Show the intent signals resolved from request text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				fields.AdditionalNotes = strings.TrimSpace(fields.AdditionalNotes + " " + strings.Join(args, " "))
			}
			cfg, err := infra.LoadLocalConfig()
			if err != nil {
				return err
			}
			vocab, err := intent.LoadVocabulary(cfg.IntentVocabularyPath)
			if err != nil {
				return err
			}
			signals := intent.NewResolver(vocab).Resolve(fields)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(signals)
		},
	}
	cmd.Flags().StringVar(&fields.BackgroundType, "background", "", "Background preset")
	cmd.Flags().StringVar(&fields.CustomBackground, "custom", "", "Custom scene description")
	cmd.Flags().StringVar(&fields.AdditionalNotes, "notes", "", "Additional notes")
	cmd.Flags().StringVar(&fields.UsagePurpose, "usage", "", "Usage purpose")
	cmd.Flags().StringVar(&fields.DisplayInfo, "display", "", "Display information")
	cmd.Flags().StringVar(&fields.VisualStyle, "style", "", "Visual style")
	cmd.Flags().StringVar(&fields.TargetAudience, "audience", "", "Target audience")
	return cmd
}
