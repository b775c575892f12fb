package cli

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantview/pkg/apiclient"
	"github.com/matzehuels/plantview/pkg/config"
	"github.com/matzehuels/plantview/pkg/engine"
	"github.com/matzehuels/plantview/pkg/errors"
)

// newEditCmd creates the edit command: the live editor TUI.
func newEditCmd(cfg *config.Config) *cobra.Command {
	var (
		formatStr   string
		previewPath string
	)

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a diagram with live preview",
		Long: `Edit opens a terminal editor for PlantUML source. While you type, the
preview image is re-rendered after a short pause and written to the
preview path, where an image viewer with auto-reload will pick it up.

Key bindings:

  ctrl+s   save a snapshot into the lowest free slot
  ctrl+l   load a slot (press the slot digit next)
  ctrl+c   quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			format, err := engine.ParseFormat(formatStr)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid --format")
			}
			if previewPath == "" {
				previewPath = "preview." + string(format)
			}

			initial := ""
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read %s", args[0])
				}
				initial = string(data)
			}

			store, err := buildSlotStore(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			// The client timeout sits above the server's engine ceiling so
			// server-side timeouts come back classified.
			client := apiclient.New(cfg.ServerURL, cfg.RequestTimeout()+5*time.Second)
			if err := client.Health(cmd.Context()); err != nil {
				logger.Warn("api server not reachable, previews will fail until it is up",
					"server_url", cfg.ServerURL, "err", err)
			}

			model := newEditorModel(cmd.Context(), client, store, initial, format, previewPath, cfg.Debounce())
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&formatStr, "format", "f", "png", "preview format (png, svg)")
	cmd.Flags().StringVarP(&previewPath, "preview", "p", "", "preview image path")
	return cmd
}
