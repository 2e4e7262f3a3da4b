package commands

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/pkg/fridge"
	"github.com/korjavin/ispirami/pkg/openai"
)

// FridgeCmd manages the fridge file
var FridgeCmd = &cobra.Command{
	Use:   "fridge",
	Short: "Show or edit the fridge file",
	Long: `Manage the fridge JSON file, a mapping of ingredient names to amounts:

  {"uova": 6, "latte": "1 l", "sale": null}

Only the names take part in matching.`,
}

var fridgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the fridge contents",
	Args:  cobra.NoArgs,
	RunE:  runFridgeList,
}

var fridgeAddCmd = &cobra.Command{
	Use:     "add <items>",
	Short:   "Add ingredients, e.g. \"uova: 6, latte: 1 l, sale\"",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runFridgeAdd,
	Example: `  ispirami fridge add "uova: 6, latte: 1 l, sale"`,
}

var fridgeRemoveCmd = &cobra.Command{
	Use:   "remove <names>",
	Short: "Remove ingredients by name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFridgeRemove,
}

var fridgeImportCmd = &cobra.Command{
	Use:   "import-text [text]",
	Short: "Add the ingredients found in free text, read from the arguments or stdin",
	Long: `Extract ingredient names from free text, such as a shopping receipt, and
add them to the fridge. With OPENAI_API_KEY set the text is read by the
language model; otherwise it is split on commas and new lines.`,
	RunE: runFridgeImport,
}

func init() {
	FridgeCmd.AddCommand(fridgeListCmd, fridgeAddCmd, fridgeRemoveCmd, fridgeImportCmd)
}

func runFridgeList(cmd *cobra.Command, args []string) error {
	f, err := loadFridge(cfg.FridgeFile)
	if err != nil {
		return err
	}
	items := f.Items()
	if len(items) == 0 {
		pterm.Info.Printf("%s is empty\n", cfg.FridgeFile)
		return nil
	}

	data := pterm.TableData{{"Ingredient", "Amount"}}
	for _, item := range items {
		data = append(data, []string{item.Name, item.Quantity})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runFridgeAdd(cmd *cobra.Command, args []string) error {
	return addToFridge(strings.Join(args, ", "))
}

func addToFridge(text string) error {
	items := fridge.ParseList(text)
	if len(items) == 0 {
		return errors.New("no ingredients given")
	}

	f, err := loadFridge(cfg.FridgeFile)
	if err != nil {
		return err
	}
	fridge.Merge(f, fridge.ItemMap(items))
	if err := fridge.SaveFile(cfg.FridgeFile, f); err != nil {
		return err
	}
	pterm.Success.Printf("Added %s\n", strings.Join(fridge.ItemNames(items), ", "))
	return nil
}

func runFridgeRemove(cmd *cobra.Command, args []string) error {
	f, err := loadFridge(cfg.FridgeFile)
	if err != nil {
		return err
	}

	names := fridge.ItemNames(fridge.ParseList(strings.Join(args, ", ")))
	removed := fridge.Remove(f, names)
	if len(removed) == 0 {
		pterm.Warning.Println("Nothing to remove")
		return nil
	}
	if err := fridge.SaveFile(cfg.FridgeFile, f); err != nil {
		return err
	}
	pterm.Success.Printf("Removed %s\n", strings.Join(removed, ", "))
	return nil
}

func runFridgeImport(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "failed to read stdin")
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("no text given")
	}

	if !cfg.HasOpenAI() {
		return addToFridge(text)
	}

	client := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIAPIBase, cfg.OpenAIModel)
	names, err := client.ParseIngredientsFromText(cmd.Context(), text)
	if err != nil {
		return err
	}
	return addToFridge(strings.Join(names, "\n"))
}
