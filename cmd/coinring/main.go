// coinring - coin ring texture remapper and terminal viewer.
// Unrolls a photo of a coin face into the texture of a ring punched from
// that coin, builds the ring mesh and shows, bakes or snapshots it.
//
// Viewer controls:
//
//	Mouse drag  - Spin the ring and tilt the camera
//	A/D W/S     - Spin and tilt with the keyboard
//	Scroll, +/- - Zoom in/out
//	T           - Toggle texture
//	B           - Toggle normal mapping (with --bump)
//	X           - Toggle wireframe
//	G           - Toggle world axes
//	P           - Toggle the flat coin preview inside the ring
//	R           - Reset view
//	?           - Toggle HUD
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/coinring/pkg/coin"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "coinring",
		Short: "Turn a coin photo into a textured coin ring",
		Long: "coinring maps a coin face onto a ring punched from it: the disc is " +
			"unrolled in polar coordinates into a ring texture, optionally along " +
			"with a normal map, and bound to a ring mesh.",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.setupLogging()
		},
	}
	opts.register(root)
	root.AddCommand(newViewCmd(opts), newBakeCmd(opts), newSnapshotCmd(opts))
	return root
}

// build loads and remaps the coin named by the single argument.
func build(cmd *cobra.Command, opts *options, image string) (*coin.Model, time.Duration, error) {
	cfg, err := opts.config(image)
	if err != nil {
		return nil, 0, err
	}
	start := time.Now()
	m, err := coin.Build(cmd.Context(), cfg)
	if err != nil {
		return nil, 0, fmt.Errorf("build %s: %w", image, err)
	}
	return m, time.Since(start), nil
}

// load builds the ring from a coin image, or reopens one baked to .glb.
func load(cmd *cobra.Command, opts *options, path string) (*coin.Model, time.Duration, error) {
	if !strings.EqualFold(filepath.Ext(path), ".glb") {
		return build(cmd, opts, path)
	}
	start := time.Now()
	m, err := coin.LoadGLB(path)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", path, err)
	}
	return m, time.Since(start), nil
}

func newViewCmd(opts *options) *cobra.Command {
	var fps int
	cmd := &cobra.Command{
		Use:   "view <coin-image|ring.glb>",
		Short: "Spin the ring in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fps <= 0 {
				return fmt.Errorf("fps %d must be positive", fps)
			}
			m, _, err := load(cmd, opts, args[0])
			if err != nil {
				return err
			}
			return runView(cmd.Context(), m, filepath.Base(args[0]), fps)
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 30, "target frames per second")
	return cmd
}

func newBakeCmd(opts *options) *cobra.Command {
	var out, glb string
	cmd := &cobra.Command{
		Use:   "bake <coin-image>",
		Short: "Write the remapped textures and optionally a GLB of the ring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, took, err := build(cmd, opts, args[0])
			if err != nil {
				return err
			}
			files, err := m.SaveTextures(out)
			if err != nil {
				return err
			}
			if glb != "" {
				if err := m.SaveGLB(glb); err != nil {
					return err
				}
				files = append(files, glb)
			}
			fmt.Fprintln(cmd.OutOrStdout(), bakeSummary(args[0], m, files, took))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "directory for diffuse.png and bump.png")
	cmd.Flags().StringVar(&glb, "glb", "", "also write the textured ring as binary glTF")
	return cmd
}

func newSnapshotCmd(opts *options) *cobra.Command {
	var (
		out   string
		frame string
		view  snapshotView
	)
	cmd := &cobra.Command{
		Use:   "snapshot <coin-image|ring.glb>",
		Short: "Render one frame of the ring to a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, err := parseFrame(frame)
			if err != nil {
				return err
			}
			m, took, err := load(cmd, opts, args[0])
			if err != nil {
				return err
			}
			s := NewScene(m, w, h)
			view.apply(s)
			s.Render()
			if err := s.Framebuffer().SavePNG(out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), snapshotSummary(args[0], m, out, w, h, took))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "ring.png", "output PNG")
	cmd.Flags().StringVar(&frame, "frame", "640x480", "image size in pixels, WxH")
	view.register(cmd)
	return cmd
}
