package geofile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gofoam/geometry3D/brep"
)

// KernelHeader selects the OpenCASCADE geometry kernel in gmsh.
const KernelHeader = `SetFactory("OpenCASCADE");`

// Writer serializes a store kind by kind in keyword table order, ids
// ascending within a kind.
type Writer struct {
	Header           bool // emit KernelHeader first
	StripOrientation bool // write loop members unsigned
}

func NewWriter() *Writer {
	return &Writer{Header: true, StripOrientation: true}
}

// WriteFile writes s to path, replacing any existing file.
func (w *Writer) WriteFile(path string, s *brep.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = w.Write(f, s); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Format returns the text of s.
func (w *Writer) Format(s *brep.Store) []byte {
	var buf bytes.Buffer
	_ = w.Write(&buf, s)
	return buf.Bytes()
}

func (w *Writer) Write(out io.Writer, s *brep.Store) error {
	bw := bufio.NewWriter(out)
	if w.Header {
		fmt.Fprintln(bw, KernelHeader)
	}
	for _, kw := range keywords {
		switch kw.Kind {
		case brep.PointKind:
			for _, id := range brep.SortedIDs(s.Points) {
				p := s.Points[id]
				fields := []string{formatFloat(p.X.X), formatFloat(p.X.Y), formatFloat(p.X.Z)}
				if p.Sizing != "" {
					fields = append(fields, p.Sizing)
				}
				fmt.Fprintf(bw, "%s (%d) = {%s};\n", kw.Name, id, strings.Join(fields, ","))
			}
		case brep.EdgeKind:
			for _, id := range brep.SortedIDs(s.Edges) {
				e := s.Edges[id]
				fmt.Fprintf(bw, "%s (%d) = {%s};\n", kw.Name, id, joinInts(e[:], false))
			}
		case brep.WireLoopKind:
			for _, id := range brep.SortedIDs(s.WireLoops) {
				fmt.Fprintf(bw, "%s (%d) = {%s};\n", kw.Name, id, joinInts(s.WireLoops[id], w.StripOrientation))
			}
		case brep.FaceKind:
			for _, id := range brep.SortedIDs(s.Faces) {
				fmt.Fprintf(bw, "%s (%d) = {%s};\n", kw.Name, id, joinInts(s.Faces[id], true))
			}
		case brep.ShellLoopKind:
			for _, id := range brep.SortedIDs(s.ShellLoops) {
				fmt.Fprintf(bw, "%s (%d) = {%s};\n", kw.Name, id, joinInts(s.ShellLoops[id], w.StripOrientation))
			}
		case brep.VolumeKind:
			for _, id := range brep.SortedIDs(s.Volumes) {
				fmt.Fprintf(bw, "%s (%d) = {%s};\n", kw.Name, id, joinInts(s.Volumes[id], true))
			}
		case brep.PeriodicKind:
			for _, pp := range s.Periodic {
				fmt.Fprintf(bw, "%s {%d} = {%d} Translate{%s,%s,%s};\n", kw.Name, pp.Dst, pp.Src,
					formatFloat(pp.Translation.X), formatFloat(pp.Translation.Y), formatFloat(pp.Translation.Z))
			}
		case brep.PhysicalSurfaceKind:
			writeGroups(bw, kw.Name, s.PhysicalSurfaces)
		case brep.PhysicalVolumeKind:
			writeGroups(bw, kw.Name, s.PhysicalVolumes)
		}
	}
	return bw.Flush()
}

func writeGroups(bw *bufio.Writer, name string, groups map[int]brep.PhysicalGroup) {
	for _, id := range brep.SortedIDs(groups) {
		g := groups[id]
		label := strconv.Itoa(id)
		if g.Name != "" {
			label = strconv.Quote(g.Name)
		}
		fmt.Fprintf(bw, "%s (%s) = {%s};\n", name, label, joinInts(g.Members, true))
	}
}

func formatFloat(v float64) string {
	if v == 0 {
		// no negative zero
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinInts(vals []int, unsigned bool) string {
	var sb strings.Builder
	for i, v := range vals {
		if i > 0 {
			sb.WriteByte(',')
		}
		if unsigned && v < 0 {
			v = -v
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}
