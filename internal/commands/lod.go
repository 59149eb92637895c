package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"lod-engine/internal/lod"
	"lod-engine/internal/perf"
	"lod-engine/internal/quality"
)

// LODControl is the part of lod.System the commands drive.
type LODControl interface {
	SetQualityLevel(q quality.Mode)
	SetAutoOptimization(on bool)
	Quality() quality.Mode
	Statistics() lod.Statistics
	ObjectDebugInfo(id string) (lod.DebugInfo, bool)
	UpdateObject(id string, p lod.Patch) error
}

// ModeControl is the part of perf.Monitor the commands drive.
type ModeControl interface {
	SetMode(m quality.Mode)
	Mode() quality.Mode
	Metrics() perf.Metrics
}

// modeFlags binds --high, --medium and --low on fs.
func modeFlags(fs *flag.FlagSet) func() (quality.Mode, error) {
	high := fs.Bool("high", false, "high quality")
	medium := fs.Bool("medium", false, "medium quality")
	low := fs.Bool("low", false, "low quality")
	// Flag sets are reused across executions, so values are cleared once read.
	return func() (quality.Mode, error) {
		defer func() { *high, *medium, *low = false, false, false }()
		var picked []quality.Mode
		if *high {
			picked = append(picked, quality.High)
		}
		if *medium {
			picked = append(picked, quality.Medium)
		}
		if *low {
			picked = append(picked, quality.Low)
		}
		if len(picked) != 1 {
			return "", errors.New("use exactly one of --high, --medium, --low")
		}
		return picked[0], nil
	}
}

// RegisterLOD adds the LOD and performance commands:
//
//	quality --high|--medium|--low   pin every object to a quality level
//	mode --high|--medium|--low      override the monitor's quality mode
//	auto --on|--off                 toggle automatic quality adjustment
//	stats                           print LOD statistics and frame metrics
//	info <id>                       print one object's LOD state
//	enable <id> / disable <id>      include or skip an object in LOD updates
//	help                            list every registered command
//
// Output goes to out.
func RegisterLOD(r *Registry, sys LODControl, mon ModeControl, out io.Writer) {
	qfs := newFlagSet("quality")
	qmode := modeFlags(qfs)
	r.Register("quality", qfs, func() error {
		m, err := qmode()
		if err != nil {
			return err
		}
		sys.SetQualityLevel(m)
		fmt.Fprintf(out, "quality: %s\n", m)
		return nil
	})

	mfs := newFlagSet("mode")
	mmode := modeFlags(mfs)
	r.Register("mode", mfs, func() error {
		m, err := mmode()
		if err != nil {
			return err
		}
		mon.SetMode(m)
		fmt.Fprintf(out, "mode: %s\n", m)
		return nil
	})

	afs := newFlagSet("auto")
	on := afs.Bool("on", false, "enable automatic quality adjustment")
	off := afs.Bool("off", false, "disable automatic quality adjustment")
	r.Register("auto", afs, func() error {
		defer func() { *on, *off = false, false }()
		if *on == *off {
			return errors.New("use exactly one of --on, --off")
		}
		sys.SetAutoOptimization(*on)
		fmt.Fprintf(out, "auto optimization: %t\n", *on)
		return nil
	})

	r.Register("stats", newFlagSet("stats"), func() error {
		st := sys.Statistics()
		m := mon.Metrics()
		fmt.Fprintf(out, "objects %d visible %d polygons %d quality %s frustum-culled %d size-culled %d\n",
			st.TotalObjects, st.VisibleObjects, st.TotalPolygons, st.CurrentQuality, st.FrustumCulled, st.OcclusionCulled)
		fmt.Fprintf(out, "fps %.1f avg %.1f stddev %.2f frame %.2fms mode %s\n",
			m.FPS, m.AverageFPS, m.FPSStdDev, m.FrameTime, mon.Mode())
		return nil
	})

	ifs := newFlagSet("info")
	r.Register("info", ifs, func() error {
		if ifs.NArg() != 1 {
			return errors.New("usage: info <id>")
		}
		id := ifs.Arg(0)
		d, ok := sys.ObjectDebugInfo(id)
		if !ok {
			return fmt.Errorf("%w: %q", lod.ErrUnknownObject, id)
		}
		state := "visible"
		if !d.Visible {
			state = "hidden (" + string(d.Culled) + ")"
		}
		fmt.Fprintf(out, "%s: level %d distance %.2f screen %.1fpx polygons %d in-frustum %t %s\n",
			id, d.ActiveLevel, d.Distance, d.ScreenSize, d.PolygonCount, d.InFrustum, state)
		return nil
	})

	for _, name := range []string{"enable", "disable"} {
		fs := newFlagSet(name)
		disabled := name == "disable"
		r.Register(name, fs, func() error {
			if fs.NArg() != 1 {
				return fmt.Errorf("usage: %s <id>", name)
			}
			if err := sys.UpdateObject(fs.Arg(0), lod.Patch{Disabled: &disabled}); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %sd\n", fs.Arg(0), name)
			return nil
		})
	}

	r.Register("help", newFlagSet("help"), func() error {
		r.Usage(out)
		return nil
	})
}

// RegisterSelect adds "select <id>" and "select --clear", reporting the chosen
// object id (empty when cleared) to set.
func RegisterSelect(r *Registry, sys LODControl, out io.Writer, set func(id string)) {
	fs := newFlagSet("select")
	clearSel := fs.Bool("clear", false, "clear the selection")
	r.Register("select", fs, func() error {
		defer func() { *clearSel = false }()
		switch {
		case *clearSel && fs.NArg() == 0:
			set("")
			fmt.Fprintln(out, "selection cleared")
			return nil
		case *clearSel || fs.NArg() != 1:
			return errors.New("usage: select <id> | select --clear")
		}
		id := fs.Arg(0)
		if _, ok := sys.ObjectDebugInfo(id); !ok {
			return fmt.Errorf("%w: %q", lod.ErrUnknownObject, id)
		}
		set(id)
		fmt.Fprintf(out, "selected %s\n", id)
		return nil
	})
}
