// Command tiffvistool inspects and renders TIFF rasters through the
// tiffvis normalization pipeline.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/nfnt/resize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kleinicke/tiffvis"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "tiffvistool",
		Short:         "Inspect and render TIFF rasters",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log := logrus.New()
				log.SetLevel(logrus.DebugLevel)
				tiffvis.EnableDiagnostics(log)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log decode diagnostics")

	root.AddCommand(infoCmd(), rawCmd(), previewCmd())

	return root
}

// resultInfo is the JSON projection of a Result for the info command.
// Min/max are pointers because a raster with no finite samples reports the
// ±Inf identities, which JSON cannot carry; those surface as null.
type resultInfo struct {
	Width                     uint32   `json:"width"`
	Height                    uint32   `json:"height"`
	Channels                  uint32   `json:"channels"`
	BitsPerSample             uint32   `json:"bitsPerSample"`
	SampleFormat              uint32   `json:"sampleFormat"`
	Compression               uint32   `json:"compression"`
	Predictor                 uint32   `json:"predictor"`
	PhotometricInterpretation uint32   `json:"photometricInterpretation"`
	PlanarConfiguration       uint32   `json:"planarConfiguration"`
	DataBytes                 int      `json:"dataBytes"`
	MinValue                  *float64 `json:"minValue"`
	MaxValue                  *float64 `json:"maxValue"`
}

func newResultInfo(res *tiffvis.Result) resultInfo {
	return resultInfo{
		Width:                     res.Width,
		Height:                    res.Height,
		Channels:                  res.Channels,
		BitsPerSample:             res.BitsPerSample,
		SampleFormat:              uint32(res.SampleFormat),
		Compression:               res.Compression,
		Predictor:                 res.Predictor,
		PhotometricInterpretation: res.PhotometricInterpretation,
		PlanarConfiguration:       res.PlanarConfiguration,
		DataBytes:                 len(res.Data),
		MinValue:                  finiteOrNull(res.MinValue),
		MaxValue:                  finiteOrNull(res.MaxValue),
	}
}

func finiteOrNull(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print raster metadata and statistics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(newResultInfo(res))
		},
	}
}

func rawCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "raw <file>",
		Short: "Write the canonical little-endian sample buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			return os.WriteFile(out, res.Data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func previewCmd() *cobra.Command {
	var (
		out     string
		maxSize uint
	)

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a min/max-normalized 8-bit PNG preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			img, err := renderPreview(res)
			if err != nil {
				return err
			}
			if maxSize > 0 {
				b := img.Bounds()
				if b.Dx() > int(maxSize) || b.Dy() > int(maxSize) {
					img = resize.Thumbnail(maxSize, maxSize, img, resize.Bilinear)
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			return png.Encode(f, img)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG file")
	cmd.Flags().UintVar(&maxSize, "max-size", 0, "downscale preview to fit this dimension")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func decodeFile(path string) (*tiffvis.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return tiffvis.Decode(data)
}

// renderPreview maps the float32 view to 8-bit gray or RGBA, scaling sample
// values linearly between the decoded min and max.
func renderPreview(res *tiffvis.Result) (image.Image, error) {
	view := res.Float32View()
	if len(view) == 0 {
		return nil, errors.New("raster has no float32 view to render")
	}
	w, h, ch := int(res.Width), int(res.Height), int(res.Channels)
	if len(view) < w*h*ch {
		return nil, fmt.Errorf("short sample view: %d values for %dx%dx%d", len(view), w, h, ch)
	}

	scale := res.MaxValue - res.MinValue
	norm := func(v float32) uint8 {
		if scale <= 0 {
			return 0
		}
		n := (float64(v) - res.MinValue) / scale
		if n < 0 {
			n = 0
		} else if n > 1 {
			n = 1
		}
		return uint8(n*255 + 0.5)
	}

	if ch < 3 {
		img := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetGray(x, y, color.Gray{Y: norm(view[(y*w+x)*ch])})
			}
		}
		return img, nil
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * ch
			a := uint8(255)
			if ch == 4 && res.PhotometricInterpretation != 5 {
				a = norm(view[i+3])
			}
			img.SetRGBA(x, y, color.RGBA{
				R: norm(view[i]),
				G: norm(view[i+1]),
				B: norm(view[i+2]),
				A: a,
			})
		}
	}
	return img, nil
}
