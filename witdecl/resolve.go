package witdecl

import (
	"bytes"
	"os"
	"sort"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/typedesc/descriptor"
	"github.com/wippyai/typedesc/errors"
)

// Named is a converted WIT typedef.
type Named struct {
	Desc descriptor.Descriptor
	Name string
}

// Load reads a WIT package in the JSON form emitted by
// `wasm-tools component wit --json`.
func Load(path string) (*wit.Resolve, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	res, err := wit.DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.ParseFailed("WIT JSON "+path, err)
	}
	return res, nil
}

// ConvertResolve converts every named typedef of res, sorted by name.
// Resources have no value layout and are skipped.
func ConvertResolve(res *wit.Resolve) ([]Named, error) {
	if res == nil {
		return nil, errors.NilDescriptor(errors.PhaseResolve, []string{"resolve"})
	}

	c := NewConverter()
	var out []Named
	for _, td := range res.TypeDefs {
		if td == nil || td.Name == nil {
			continue
		}
		if _, ok := td.Kind.(*wit.Resource); ok {
			continue
		}
		d, err := c.Convert(td)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return nil, e.WithPath(*td.Name)
			}
			return nil, err
		}
		out = append(out, Named{Name: *td.Name, Desc: d})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	Logger().Debug("converted WIT typedefs", zap.Int("count", len(out)))
	return out, nil
}
