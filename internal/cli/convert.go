package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plantview/pkg/config"
	"github.com/matzehuels/plantview/pkg/convert"
	"github.com/matzehuels/plantview/pkg/engine"
	"github.com/matzehuels/plantview/pkg/errors"
)

// newConvertCmd creates the convert command for one-shot file conversion.
// It talks to the engine directly through the broker, no API server needed.
func newConvertCmd(cfg *config.Config) *cobra.Command {
	var (
		formatStr string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a diagram file to an image",
		Long: `Convert reads PlantUML source from a file (or - for stdin), renders it
through the configured engine, and writes the image next to the source
unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			format, err := engine.ParseFormat(formatStr)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid --format")
			}

			source, err := readSource(args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = outputPath(args[0], format)
			}

			prog := newProgress(logger)
			broker := buildBroker(*cfg, logger)
			res := broker.Convert(cmd.Context(), convert.Request{Content: source, Format: format})

			switch res.Outcome {
			case convert.Success:
				if format == engine.PNG && !engine.IsPNG(res.Payload) {
					return errors.New(errors.ErrCodeEngine, "engine returned data that is not a PNG image")
				}
				if err := os.WriteFile(outPath, res.Payload, 0o644); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "failed to write %s", outPath)
				}
				prog.done(fmt.Sprintf("Rendered %s", outPath))
				printSuccess("wrote %d bytes", len(res.Payload))
				printFile(outPath)
				return nil
			case convert.SyntaxError:
				// Still an image: write it so the user sees what went wrong.
				if err := os.WriteFile(outPath, res.Payload, 0o644); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "failed to write %s", outPath)
				}
				printWarning("%s", res.Message)
				printFile(outPath)
				return errors.New(errors.ErrCodeEngine, "diagram has a syntax error")
			case convert.ValidationError:
				return errors.New(errors.ErrCodeInvalidInput, "%s", res.Message)
			case convert.NetworkError:
				return errors.New(errors.ErrCodeNetwork, "%s", res.Message)
			case convert.Timeout:
				return errors.New(errors.ErrCodeTimeout, "%s", res.Message)
			default:
				return errors.New(errors.ErrCodeEngine, "%s", res.Message)
			}
		},
	}

	cmd.Flags().StringVarP(&formatStr, "format", "f", "png", "output format (png, svg)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file path")
	return cmd
}

func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read %s", path)
	}
	return string(data), nil
}

// outputPath derives the image path from the source path by swapping the
// extension, e.g. diagram.puml -> diagram.png.
func outputPath(src string, format engine.Format) string {
	base := src
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "-" {
		base = "diagram"
	}
	return base + "." + string(format)
}
