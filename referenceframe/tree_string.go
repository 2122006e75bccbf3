package referenceframe

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/jointmotion/utils"
)

// String prints out a table of each frame in the tree in traversal order, with columns of name,
// parent, joint type and values, world translation, world orientation and geometry.
func (t *Tree) String() string {
	tw := table.NewWriter()
	tw.SetTitle(t.name)
	tw.AppendHeader(table.Row{"#", "Name", "Parent", "Joint", "Value", "Translation", "Orientation", "Geometry"})
	i := 0
	t.walkFrom(0, func(idx int) bool {
		f := t.frames[idx]
		parent, jointType, value := "", "", ""
		if f.parent >= 0 {
			parent = t.frames[f.parent].name
		}
		if f.joint != nil {
			jointType = f.joint.Type().String()
			value = formatValues(f.joint.Value())
		}
		geomString := ""
		if f.geometry != nil {
			geomString = f.geometry.String()
		}
		pose := t.worldPose(idx)
		tra := pose.Point()
		ori := pose.Orientation().EulerAngles()
		tw.AppendRow(table.Row{
			fmt.Sprintf("%d", i),
			f.name,
			parent,
			jointType,
			value,
			fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", tra.X, tra.Y, tra.Z),
			fmt.Sprintf(
				"Roll:%.2f, Pitch:%.2f, Yaw:%.2f",
				utils.RadToDeg(ori.Roll),
				utils.RadToDeg(ori.Pitch),
				utils.RadToDeg(ori.Yaw),
			),
			geomString,
		})
		i++
		return true
	})
	return tw.Render()
}

func formatValues(values []float64) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%.4f", v))
	}
	return strings.Join(parts, ", ")
}
