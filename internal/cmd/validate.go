package cmd

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/fwlab/fwsetup-cli/internal/config"
)

//go:embed schemas/fwsetup-config.v1.schema.json
var schemaFS embed.FS

var validateConfig string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the .fwsetup.yaml settings file",
	Long: `Validates the settings file against the JSON Schema, then applies the
same semantic checks the bootstrap itself performs.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateConfig, "config", config.DefaultFile, "Path to the settings file")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(validateConfig); os.IsNotExist(err) {
		return fmt.Errorf("%s not found", validateConfig)
	}

	fmt.Printf("🔍 Validating %s...\n", validateConfig)

	schemaBytes, err := schemaFS.ReadFile("schemas/fwsetup-config.v1.schema.json")
	if err != nil {
		return fmt.Errorf("failed to load JSON schema: %w", err)
	}

	raw, err := os.ReadFile(validateConfig)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", validateConfig, err)
	}

	// The schema machinery speaks JSON, the settings file is YAML.
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", validateConfig, err)
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert settings to JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewBytesLoader(docJSON)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		fmt.Println("\n❌ Validation failed with the following errors:")
		fmt.Println()

		for i, desc := range result.Errors() {
			fmt.Printf("%d. %s\n", i+1, desc.String())
			fmt.Printf("   Field: %s\n", desc.Field())
			fmt.Printf("   Type: %s\n\n", desc.Type())
		}

		return fmt.Errorf("validation failed with %d errors", len(result.Errors()))
	}

	// Semantic checks beyond the schema (defaults, required combinations).
	if _, err := config.Load(validateConfig); err != nil {
		return err
	}

	fmt.Printf("✅ %s is valid!\n", validateConfig)
	return nil
}
