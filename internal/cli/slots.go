package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantview/pkg/config"
	"github.com/matzehuels/plantview/pkg/errors"
	"github.com/matzehuels/plantview/pkg/slots"
)

// newSlotsCmd creates the slots command group for save slot management.
func newSlotsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Manage diagram save slots",
		Long: fmt.Sprintf(`Slots are %d numbered save positions for diagram snapshots, shared with
the editor's ctrl+s / ctrl+l bindings. There is no eviction: when all
slots are occupied or the %d byte budget is reached, delete one first.`,
			slots.MaxSlots, slots.DefaultMaxBytes),
	}

	cmd.AddCommand(newSlotsListCmd(cfg))
	cmd.AddCommand(newSlotsShowCmd(cfg))
	cmd.AddCommand(newSlotsDeleteCmd(cfg))
	return cmd
}

func newSlotsListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List occupied save slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := buildSlotStore(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println(StyleDim.Render("no saved slots"))
				return nil
			}

			rows := make([][]string, len(list))
			for i, s := range list {
				title := s.Document.Title
				if title == "" {
					title = "—"
				}
				rows[i] = []string{
					strconv.Itoa(s.Number),
					title,
					s.SavedAt.Local().Format("2006-01-02 15:04"),
					fmt.Sprintf("%d", len(s.Document.Content)),
					s.Preview(),
				}
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("#", "Title", "Saved", "Chars", "Preview").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
					}
					if col == 0 {
						return lipgloss.NewStyle().Foreground(colorCyan)
					}
					return lipgloss.NewStyle()
				})
			fmt.Println(t)
			return nil
		},
	}
}

func newSlotsShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Print the diagram source saved in a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseSlotNumber(args[0])
			if err != nil {
				return err
			}

			store, err := buildSlotStore(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			slot, err := store.Load(cmd.Context(), number)
			if err != nil {
				return err
			}
			fmt.Println(slot.Document.Content)
			return nil
		},
	}
}

func newSlotsDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number>",
		Short: "Free a save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseSlotNumber(args[0])
			if err != nil {
				return err
			}

			store, err := buildSlotStore(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), number); err != nil {
				return err
			}
			printSuccess("slot %d freed", number)
			return nil
		},
	}
}

func parseSlotNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidSlot, "slot number must be an integer, got %q", s)
	}
	if err := slots.ValidateNumber(n); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidSlot, err, "invalid slot number")
	}
	return n, nil
}
