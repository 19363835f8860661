// Package logs wires klog into the command line. Commands log through
// klog.Background(), which the library packages accept as a logr.Logger.
package logs

import (
	"flag"
	"fmt"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

// Standard log verbosity levels.
const (
	Info  = 0
	Debug = 1
	Trace = 2
)

// visibleFlagNames are the klog flags shown in help output. The others
// are hidden but still accepted.
var visibleFlagNames = map[string]bool{
	"v":       true,
	"vmodule": true,
}

// AddFlags adds the klog flags to the supplied flag set, with "-v"
// available as "--log-level".
func AddFlags(fs *pflag.FlagSet) {
	gfs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(gfs)

	var tfs pflag.FlagSet
	tfs.AddGoFlagSet(gfs)
	tfs.VisitAll(func(f *pflag.Flag) {
		if !visibleFlagNames[f.Name] {
			f.Hidden = true
		}

		if f.Name == "v" {
			f.Name = "log-level"
			f.Shorthand = "v"
			f.Usage = fmt.Sprintf("%s. 0=Info, 1=Debug, 2=Trace. (default: 0)", f.Usage)
		}
	})
	fs.AddFlagSet(&tfs)
}
