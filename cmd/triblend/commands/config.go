package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minsuk/triblend/internal/pipelineconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and print the pipeline configuration",
	Long: `Loads the pipeline YAML, validates every field and prints the
effective settings plus the canonical config hash that namespaces run
artifacts.

Example:
  go run ./cmd/triblend config
  go run ./cmd/triblend config --pipeline config/pipeline.yaml`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	d, err := initDeps(true, 1)
	if err != nil {
		return err
	}
	p := d.pipeline

	hash, err := pipelineconfig.Hash(p)
	if err != nil {
		return fmt.Errorf("hash config: %w", err)
	}

	PrintDoubleSeparator()
	fmt.Println("  Pipeline Configuration")
	PrintSeparator()
	PrintKeyValue("Pipeline", fmt.Sprintf("%s v%s", p.Meta.PipelineID, p.Meta.Version), 14)
	PrintKeyValue("Config hash", hash, 14)
	PrintKeyValue("Objective", p.Data.Objective, 14)
	PrintKeyValue("Label basis", string(p.Data.LabelBasis), 14)
	PrintKeyValue("Windows", fmt.Sprintf("train %dm / val %dm / test %dm, step %dm, embargo %dd",
		p.Windows.TrainMonths, p.Windows.ValMonths, p.Windows.TestMonths,
		p.Windows.RollStepMonths, p.Windows.EmbargoDays), 14)
	PrintKeyValue("Standardizer", fmt.Sprintf("window %d, clip ±%.1f",
		p.Standardizer.Window, p.Standardizer.Clip), 14)
	PrintKeyValue("Heads", fmt.Sprintf("price=%s news=%s social=%s",
		p.Heads.Price.Family, p.Heads.News.Family, p.Heads.Social.Family), 14)
	PrintKeyValue("Weight prior", fmt.Sprintf("%.2f / %.2f / %.2f",
		p.Fusion.WeightPrior.Price, p.Fusion.WeightPrior.News, p.Fusion.WeightPrior.Social), 14)
	PrintKeyValue("Beta bound", fmt.Sprintf("%.2f", p.Fusion.GateBetaMax), 14)
	PrintKeyValue("Calibration", p.Calibration.Method, 14)
	PrintKeyValue("Seed", fmt.Sprintf("%d", p.Seed), 14)
	PrintSeparator()
	PrintSuccess("pipeline configuration is valid")
	return nil
}
