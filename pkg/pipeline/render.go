package pipeline

import (
	"context"

	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/exchange"
	"github.com/matzehuels/cellsolve/pkg/render/floorplan"
	"github.com/matzehuels/cellsolve/pkg/render/hierarchy"
)

// Render produces one artifact of a solved tree.
func Render(ctx context.Context, format string, solved *Solved, shapes []exchange.Shape, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return solved.Data, nil
	case FormatDOT:
		return []byte(hierarchy.ToDOT(solved.Root, hierarchyOptions(opts))), nil
	case FormatHierarchy:
		svg, err := hierarchy.RenderSVG(ctx, hierarchy.ToDOT(solved.Root, hierarchyOptions(opts)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render hierarchy")
		}
		return svg, nil
	case FormatFloorplan:
		var fo []floorplan.Option
		if opts.Labels {
			fo = append(fo, floorplan.WithLabels())
		}
		return floorplan.RenderSVG(shapes, fo...), nil
	default:
		return nil, ValidateFormat(format)
	}
}

func hierarchyOptions(opts Options) hierarchy.Options {
	return hierarchy.Options{Layers: opts.ShowLayers, Boxes: opts.ShowBoxes}
}
