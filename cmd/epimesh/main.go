// Command epimesh loads a mesh in meshtext format, applies topology edits to
// it and writes the result.
//
//	epimesh -in sheet.txt -divide 3 -t3 -svg sheet.svg -out -
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/vertexmodel/epimesh"
	"github.com/vertexmodel/epimesh/meshsvg"
	"github.com/vertexmodel/epimesh/meshtext"
	"github.com/vertexmodel/epimesh/snapshot"
)

type options struct {
	in      string
	out     string
	svg     string
	db      string
	divide  int
	t3      bool
	topo    epimesh.TopologyConfig
	verbose int
}

func main() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	opts := options{topo: epimesh.DefaultTopologyConfig()}
	flag.StringVar(&opts.in, "in", "", "input mesh (meshtext format, - for stdin)")
	flag.StringVar(&opts.out, "out", "", "output mesh (meshtext format, - for stdout)")
	flag.StringVar(&opts.svg, "svg", "", "write an SVG drawing of the result")
	flag.StringVar(&opts.db, "db", "", "snapshot database directory")
	flag.IntVar(&opts.divide, "divide", -1, "divide this face with a lateral split")
	flag.BoolVar(&opts.t3, "t3", false, "resolve vertices passing close to boundary edges")
	flag.Float64Var(&opts.topo.Epsilon, "eps", opts.topo.Epsilon, "broad-phase margin around edges")
	flag.Float64Var(&opts.topo.DMin, "dmin", opts.topo.DMin, "vertex-edge distance that triggers a T3 swap")
	flag.Float64Var(&opts.topo.DSep, "dsep", opts.topo.DSep, "separation of resolved vertices")
	flag.BoolVar(&opts.topo.AllowTwoSided, "allow-two-sided", false, "allow collapses that leave faces with fewer than 3 sides")
	flag.IntVar(&opts.verbose, "v", 0, "log verbosity")
	flag.Parse()
	fset.Set("v", fmt.Sprint(opts.verbose))

	err := run(opts)
	klog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, "epimesh:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.in == "" {
		return errors.New("no input mesh, use -in")
	}
	cfg := epimesh.DefaultConfig()
	cfg.Topology = opts.topo

	m, err := readMesh(opts.in, cfg)
	if err != nil {
		return err
	}
	var store *snapshot.Store
	if opts.db != "" {
		store, err = snapshot.Open(snapshot.Options{Dir: opts.db, Config: cfg})
		if err != nil {
			return err
		}
		defer store.Close()
	}
	var step uint64
	record := func() error {
		if store == nil {
			return nil
		}
		err := store.Put(step, m)
		step++
		return err
	}
	if err := record(); err != nil {
		return err
	}

	geom := epimesh.PlanarGeometry{}
	if err := geom.UpdateAll(m); err != nil {
		return err
	}
	if opts.divide >= 0 {
		div, err := m.LateralSplit(epimesh.FaceID(opts.divide))
		if err != nil {
			return err
		}
		klog.Infof("divided face %d, daughter %d", opts.divide, div.Daughter)
		if err := geom.UpdateAll(m); err != nil {
			return err
		}
		if err := record(); err != nil {
			return err
		}
	}
	if opts.t3 {
		n, err := m.T3Sweep(geom, cfg.Topology)
		if err != nil {
			return err
		}
		klog.Infof("performed %d T3 swaps", n)
		if err := record(); err != nil {
			return err
		}
	}
	if err := m.Validate(); err != nil {
		return err
	}

	if opts.svg != "" {
		if err := writeFile(opts.svg, func(w io.Writer) error {
			return meshsvg.Write(w, m, meshsvg.Style{})
		}); err != nil {
			return err
		}
	}
	if opts.out != "" {
		return writeFile(opts.out, func(w io.Writer) error {
			return meshtext.Format(w, m)
		})
	}
	return nil
}

func readMesh(path string, cfg epimesh.Config) (*epimesh.Mesh, error) {
	if path == "-" {
		return meshtext.Parse(os.Stdin, cfg)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return meshtext.Parse(f, cfg)
}

func writeFile(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
