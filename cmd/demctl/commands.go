package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/samirrijal/demfetch/internal/adapters/filesystem"
	"github.com/samirrijal/demfetch/internal/adapters/memory"
	natsadapter "github.com/samirrijal/demfetch/internal/adapters/nats"
	"github.com/samirrijal/demfetch/internal/adapters/opentopo"
	"github.com/samirrijal/demfetch/internal/core/domain"
	"github.com/samirrijal/demfetch/internal/core/ports"
	"github.com/samirrijal/demfetch/internal/core/usecases"
	"github.com/samirrijal/demfetch/internal/pkg/config"
	"github.com/samirrijal/demfetch/internal/pkg/kmlexport"
	"github.com/samirrijal/demfetch/internal/pkg/logging"
)

// cliSession keys the single slot the CLI works with.
const cliSession = "cli"

// result is the envelope printed with --json.
type result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *string     `json:"error"`
}

type selectorFlags struct {
	south, north, west, east string
	geojson                  string
}

func (f *selectorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.south, "south", "", "southern edge in degrees")
	cmd.Flags().StringVar(&f.north, "north", "", "northern edge in degrees")
	cmd.Flags().StringVar(&f.west, "west", "", "western edge in degrees")
	cmd.Flags().StringVar(&f.east, "east", "", "eastern edge in degrees")
	cmd.Flags().StringVar(&f.geojson, "geojson", "", "GeoJSON file holding a drawn polygon (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("geojson", "south")
	cmd.MarkFlagsMutuallyExclusive("geojson", "north")
	cmd.MarkFlagsMutuallyExclusive("geojson", "west")
	cmd.MarkFlagsMutuallyExclusive("geojson", "east")
}

// selection builds the tagged selection from whichever modality was given.
func (f *selectorFlags) selection(fs afero.Fs, stdin io.Reader) (domain.Selection, error) {
	if f.geojson == "" {
		if f.south == "" && f.north == "" && f.west == "" && f.east == "" {
			return domain.Selection{}, errors.New("give --south/--north/--west/--east or --geojson")
		}
		return domain.ManualSelection(f.south, f.north, f.west, f.east), nil
	}

	var (
		data []byte
		err  error
	)
	if f.geojson == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = afero.ReadFile(fs, f.geojson)
	}
	if err != nil {
		return domain.Selection{}, fmt.Errorf("read geojson: %w", err)
	}
	shape, err := domain.ParseShape(data)
	if err != nil {
		return domain.Selection{}, err
	}
	return domain.DrawnSelection(shape), nil
}

type app struct {
	out, errOut io.Writer
	in          io.Reader
	fs          afero.Fs
	jsonOut     bool
}

func (a *app) print(data interface{}, text string) error {
	if !a.jsonOut {
		_, err := fmt.Fprintln(a.out, text)
		return err
	}
	return json.NewEncoder(a.out).Encode(result{Success: true, Data: data})
}

func (a *app) fail(err error) error {
	if a.jsonOut {
		msg := err.Error()
		_ = json.NewEncoder(a.out).Encode(result{Success: false, Error: &msg})
	}
	return err
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, in: os.Stdin, fs: afero.NewOsFs()}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "demctl",
		Short:         "Resolve areas and download SRTM GL3 elevation rasters",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print a JSON envelope instead of text")

	root.AddCommand(a.boundsCmd(), a.fetchCmd(), a.kmlCmd(), a.eventsCmd())
	return root
}

func (a *app) resolve(f *selectorFlags) (domain.BoundingBox, error) {
	sel, err := f.selection(a.fs, a.in)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	return usecases.Resolve(sel)
}

func (a *app) boundsCmd() *cobra.Command {
	var f selectorFlags
	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Print the bounding box of an area",
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := a.resolve(&f)
			if err != nil {
				return a.fail(err)
			}
			return a.print(box, box.String())
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) kmlCmd() *cobra.Command {
	var (
		f    selectorFlags
		name string
	)
	cmd := &cobra.Command{
		Use:   "kml",
		Short: "Write the area as a KML polygon to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := a.resolve(&f)
			if err != nil {
				return err
			}
			return kmlexport.Write(a.out, name, box)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&name, "name", "DEM selection", "placemark name")
	return cmd
}

func (a *app) fetchCmd() *cobra.Command {
	var (
		f   selectorFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Resolve an area and download its DEM raster",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := f.selection(a.fs, a.in)
			if err != nil {
				return a.fail(err)
			}

			cfg, err := config.Load("demctl")
			if err != nil {
				return a.fail(err)
			}
			slog.SetDefault(logging.New(a.errOut, cfg.Log.Level, "text"))
			if out == "" {
				out = cfg.DEM.OutputPath
			}

			var events ports.EventPublisher
			if cfg.NATS.Enabled {
				pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
				if err != nil {
					fmt.Fprintln(a.errOut, "warning: nats unavailable:", err)
				} else {
					defer pub.Close()
					events = pub
				}
			}

			store := memory.NewSelectionStore(0)
			selections := usecases.NewSelectionService(store)
			downloads := usecases.NewDownloadService(
				store,
				config.NewCredentials(),
				opentopo.New(cfg.DEM.Endpoint, cfg.DEM.Dataset, cfg.DEM.OutputFormat),
				filesystem.NewRasterStore(a.fs),
				events,
				usecases.DownloadOptions{
					OutputPath: out,
					Timeout:    cfg.DEM.RequestTimeout(),
					MaxAreaKm2: cfg.DEM.MaxAreaKm2,
					Dataset:    cfg.DEM.Dataset,
				},
			)

			ctx := cmd.Context()
			stored, err := selections.Select(ctx, cliSession, sel)
			if err != nil {
				return a.fail(err)
			}
			if !a.jsonOut {
				fmt.Fprintln(a.errOut, "Selected:", stored.Box.String())
				fmt.Fprintln(a.errOut, "Downloading DEM...")
			}

			res, err := downloads.Download(ctx, cliSession)
			if err != nil {
				return a.fail(err)
			}
			return a.print(res, fmt.Sprintf("DEM saved to %s (%.1f KB)", res.Path, res.SizeKB()))
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output GeoTIFF path (default: raster.tif next to the executable)")
	return cmd
}

func (a *app) eventsCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print download outcome events published by the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				cfg, err := config.Load("demctl")
				if err != nil {
					return a.fail(err)
				}
				url = cfg.NATS.URL
			}

			sub, err := natsadapter.NewSubscriber(url)
			if err != nil {
				return a.fail(err)
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = sub.SubscribeDownloadEvents(ctx, func(ctx context.Context, ev *domain.DownloadEvent) error {
				return a.printEvent(ev)
			})
			if err != nil {
				return err
			}

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "nats-url", "", "NATS server URL (default from config)")
	return cmd
}

func (a *app) printEvent(ev *domain.DownloadEvent) error {
	if a.jsonOut {
		return json.NewEncoder(a.out).Encode(ev)
	}
	line := fmt.Sprintf("%s %-9s %s", ev.At.Format("15:04:05"), ev.State, ev.Box.String())
	switch {
	case ev.State == domain.DownloadSucceeded:
		line += fmt.Sprintf(" -> %s (%d bytes)", ev.Path, ev.Bytes)
	case ev.Error != "":
		line += " : " + ev.Error
	}
	_, err := fmt.Fprintln(a.out, line)
	return err
}
