package app

import (
	"github.com/spf13/pflag"
)

// NamedFlagSets groups flags by section so related options stay together
// in help output and in the options aggregates.
type NamedFlagSets struct {
	order    []string
	flagSets map[string]*pflag.FlagSet
}

// FlagSet returns the flag set with the given name, creating it on first use.
func (nfs *NamedFlagSets) FlagSet(name string) *pflag.FlagSet {
	if nfs.flagSets == nil {
		nfs.flagSets = map[string]*pflag.FlagSet{}
	}
	if _, ok := nfs.flagSets[name]; !ok {
		nfs.flagSets[name] = pflag.NewFlagSet(name, pflag.ExitOnError)
		nfs.order = append(nfs.order, name)
	}

	return nfs.flagSets[name]
}

// sets returns the flag sets in registration order.
func (nfs *NamedFlagSets) sets() []*pflag.FlagSet {
	out := make([]*pflag.FlagSet, 0, len(nfs.order))
	for _, name := range nfs.order {
		out = append(out, nfs.flagSets[name])
	}

	return out
}
