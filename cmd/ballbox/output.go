package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ballbox/internal/metrics"
	"github.com/san-kum/ballbox/internal/sandbox"
	"github.com/san-kum/ballbox/internal/snapshot"
	"github.com/san-kum/ballbox/internal/surface"
	"github.com/spf13/cobra"
)

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sb, err := newSandbox(cfg, 0, 0)
	if err != nil {
		return err
	}
	if every <= 0 {
		every = 1
	}

	ms := []metrics.Metric{metrics.NewMeanEnergy(), metrics.NewEnergyDrift(), metrics.NewStability()}
	history := metrics.NewHistory(steps)

	fmt.Printf("%d balls, %d steps of %.4f\n\n", sb.Scene().Len(), steps, dt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tLEFT\tRIGHT\tTOTAL")
	for i := 1; i <= steps; i++ {
		sb.Step(dt)
		r := sb.Reading()
		for _, m := range ms {
			m.Observe(r)
		}
		history.Push(r.Total())
		if i%every == 0 || i == steps {
			fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\n", i, r.Left.Total(), r.Right.Total(), r.Total())
		}
	}
	w.Flush()

	if history.Len() > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(history.Values(), asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("kinetic energy")))
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, m := range ms {
		fmt.Fprintf(w, "%s\t%.4f\n", m.Name(), m.Value())
	}
	return w.Flush()
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sb, err := newSandbox(cfg, width, height)
	if err != nil {
		return err
	}
	for i := 0; i < renderSteps; i++ {
		sb.Step(dt)
	}

	ext := strings.ToLower(filepath.Ext(outFile))
	if ext != ".svg" && ext != ".png" && ext != ".txt" {
		return fmt.Errorf("unsupported output format: %s", outFile)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := writeFrame(f, ext, sb); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

// writeFrame draws the scene at its current size in the format named by ext.
// A .txt frame is the braille canvas, one cell per 2x4 world units.
func writeFrame(w io.Writer, ext string, sb *sandbox.Sandbox) error {
	width, height := sb.Size()
	switch ext {
	case ".svg":
		svg := surface.NewSVG(width, height)
		sb.Render(svg)
		_, err := svg.WriteTo(w)
		return err
	case ".png":
		r := surface.NewRaster(int(width), int(height))
		sb.Render(r)
		return r.WritePNG(w)
	case ".txt":
		c := surface.NewCanvas(int(width)/2, int(height)/4)
		sb.Render(c)
		_, err := io.WriteString(w, c.String())
		return err
	}
	return fmt.Errorf("unsupported output format: %s", ext)
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sb, err := newSandbox(cfg, recordW, recordH)
	if err != nil {
		return err
	}

	anim := surface.NewGIF(int(recordDt*100 + 0.5))
	r := surface.NewRaster(int(recordW), int(recordH))
	for i := 0; i < frames; i++ {
		sb.Step(recordDt)
		r.Clear()
		sb.Render(r)
		anim.AddFrame(r)
	}

	f, err := os.Create(recordOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := anim.Encode(f); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", recordOut, anim.Len())
	return nil
}

func printSnapshot(snap *snapshot.Snapshot) {
	balls := 0
	for _, p := range snap.Points {
		if p.R != nil {
			balls++
		}
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "size\t%gx%g\n", snap.Width, snap.Height)
	fmt.Fprintf(w, "points\t%d (%d balls)\n", len(snap.Points), balls)
	fmt.Fprintf(w, "left chamber\t%d\n", len(snap.DamperIndices))
	fmt.Fprintf(w, "right chamber\t%d\n", len(snap.BoxIndices))
	fmt.Fprintf(w, "inspected\t%d\n", snap.InspectedIndex)
	fmt.Fprintf(w, "system info\t%v\n", snap.ShowSystemInfo)
	w.Flush()
}
