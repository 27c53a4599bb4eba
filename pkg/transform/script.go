package transform

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/recast-io/recast/pkg/recerrors"
)

// Module installs a capability object into a script runtime. Transforms
// request modules through their require list; the engine resolves the
// names against this registry before any record is read.
type Module func(vm *goja.Runtime) error

var (
	moduleMu sync.RWMutex
	modules  = map[string]Module{
		"strings": stringsModule,
		"math":    mathModule,
		"time":    timeModule,
	}
)

// RegisterModule registers a capability module under a name, making it
// available to transforms that declare it in require.
func RegisterModule(name string, module Module) {
	moduleMu.Lock()
	defer moduleMu.Unlock()
	modules[name] = module
}

// Modules returns the registered module names, sorted.
func Modules() []string {
	moduleMu.RLock()
	defer moduleMu.RUnlock()

	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// installModules resolves require names and installs each module into the
// runtime. An unknown name fails engine construction, before any record
// is processed.
func installModules(vm *goja.Runtime, require []string) error {
	moduleMu.RLock()
	defer moduleMu.RUnlock()

	for _, name := range require {
		module, ok := modules[name]
		if !ok {
			return recerrors.Newf(recerrors.ErrorTypeExpression,
				"transform requires unknown module %q", name).
				WithDetail("module", name)
		}
		if err := module(vm); err != nil {
			return recerrors.Wrap(err, recerrors.ErrorTypeExpression, "failed to install module").
				WithDetail("module", name)
		}
	}
	return nil
}

func stringsModule(vm *goja.Runtime) error {
	obj := vm.NewObject()
	for name, fn := range map[string]interface{}{
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"trim":     strings.TrimSpace,
		"split":    strings.Split,
		"join":     strings.Join,
		"contains": strings.Contains,
		"replace":  strings.ReplaceAll,
	} {
		if err := obj.Set(name, fn); err != nil {
			return err
		}
	}
	return vm.Set("strings", obj)
}

func mathModule(vm *goja.Runtime) error {
	obj := vm.NewObject()
	for name, fn := range map[string]interface{}{
		"abs":   math.Abs,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"round": math.Round,
		"pow":   math.Pow,
	} {
		if err := obj.Set(name, fn); err != nil {
			return err
		}
	}
	return vm.Set("math", obj)
}

func timeModule(vm *goja.Runtime) error {
	obj := vm.NewObject()
	for name, fn := range map[string]interface{}{
		"now": func() string {
			return time.Now().UTC().Format(time.RFC3339)
		},
		"unix": func(sec int64) string {
			return time.Unix(sec, 0).UTC().Format(time.RFC3339)
		},
		"parse": func(value string) (int64, error) {
			ts, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return 0, err
			}
			return ts.Unix(), nil
		},
	} {
		if err := obj.Set(name, fn); err != nil {
			return err
		}
	}
	return vm.Set("time", obj)
}
