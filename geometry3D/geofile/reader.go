package geofile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gofoam/geometry3D/brep"
	"github.com/notargets/gofoam/types"
)

// SnapTolerance: parsed coordinates smaller than this in magnitude are read as zero.
const SnapTolerance = 1e-8

var (
	entityRe   = regexp.MustCompile(`(?s)^([A-Za-z][A-Za-z \t]*?)\s*\(\s*(.*?)\s*\)\s*=\s*\{(.*)\}$`)
	periodicRe = regexp.MustCompile(`(?s)^Periodic\s+Surface\s*\{(.*?)\}\s*=\s*\{(.*?)\}\s*Translate\s*\{(.*?)\}$`)
	leadWordRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
)

// Reader extracts entity statements from geometry text. Statements of any
// other kind (SetFactory, Merge, variables, fields...) are counted in Unknown
// and otherwise ignored.
type Reader struct {
	// PreserveOrientation keeps the signs of wire and shell loop members,
	// by default references are read as absolute values.
	PreserveOrientation bool
	Unknown             map[string]int

	named []namedGroup
}

type namedGroup struct {
	kind brep.Kind
	name string
	refs []int
	line int
}

func NewReader() *Reader {
	return &Reader{Unknown: make(map[string]int)}
}

// ReadFile parses the geometry file at path.
func (r *Reader) ReadFile(path string) (*brep.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := r.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read parses geometry text from rd.
func (r *Reader) Read(rd io.Reader) (*brep.Store, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return r.Parse(data)
}

// Parse builds a store from geometry text.
func (r *Reader) Parse(text []byte) (s *brep.Store, err error) {
	if r.Unknown == nil {
		r.Unknown = make(map[string]int)
	}
	r.named = r.named[:0]
	s = brep.NewStore()
	for _, st := range splitStatements(text) {
		if err = r.statement(s, st); err != nil {
			return nil, err
		}
	}
	if err = r.assignNamed(s); err != nil {
		return nil, err
	}
	return s, nil
}

type statement struct {
	text string
	line int
}

// splitStatements cuts text at semicolons outside of quotes, dropping // and
// /* */ comments. Each statement remembers the line it starts on.
func splitStatements(text []byte) (sts []statement) {
	var (
		cur     bytes.Buffer
		line    = 1
		start   = 0
		inQuote bool
	)
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			sts = append(sts, statement{text: t, line: start})
		}
		cur.Reset()
		start = 0
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			for i < len(text) && text[i] != '\n' {
				i++
			}
			line++
			cur.WriteByte(' ')
			continue
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			i += 2
			for i+1 < len(text) && !(text[i] == '*' && text[i+1] == '/') {
				if text[i] == '\n' {
					line++
				}
				i++
			}
			i++
			cur.WriteByte(' ')
			continue
		case c == ';':
			flush()
			continue
		}
		if c == '\n' {
			line++
		}
		if start == 0 && c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			start = line
		}
		cur.WriteByte(c)
	}
	flush()
	return
}

func malformed(kind brep.Kind, id int, st statement, format string, args ...interface{}) error {
	return &brep.EntityError{
		Kind:   kind,
		ID:     id,
		Err:    brep.ErrMalformedRecord,
		Detail: fmt.Sprintf("line %d: ", st.line) + fmt.Sprintf(format, args...),
	}
}

func (r *Reader) statement(s *brep.Store, st statement) error {
	if m := periodicRe.FindStringSubmatch(st.text); m != nil {
		return r.periodic(s, st, m[1], m[2], m[3])
	}
	m := entityRe.FindStringSubmatch(st.text)
	if m == nil {
		r.Unknown[leadWordRe.FindString(st.text)]++
		return nil
	}
	kind, ok := KindOf(m[1])
	if !ok || kind == brep.PeriodicKind {
		r.Unknown[strings.Join(strings.Fields(m[1]), " ")]++
		return nil
	}
	idText, body := m[2], m[3]

	if strings.HasPrefix(idText, `"`) {
		if kind != brep.PhysicalSurfaceKind && kind != brep.PhysicalVolumeKind {
			return malformed(kind, 0, st, "named id %s is only allowed for physical groups", idText)
		}
		refs, err := r.references(kind, 0, st, body, false)
		if err != nil {
			return err
		}
		r.named = append(r.named, namedGroup{kind: kind, name: strings.Trim(idText, `"`), refs: refs, line: st.line})
		return nil
	}
	id, err := strconv.Atoi(idText)
	if err != nil || id <= 0 {
		return malformed(kind, 0, st, "invalid id %q", idText)
	}

	switch kind {
	case brep.PointKind:
		if _, dup := s.Points[id]; dup {
			return malformed(kind, id, st, "duplicate id")
		}
		p, err := parsePoint(body)
		if err != nil {
			return malformed(kind, id, st, "%v", err)
		}
		s.Points[id] = p
		return nil
	case brep.EdgeKind:
		if _, dup := s.Edges[id]; dup {
			return malformed(kind, id, st, "duplicate id")
		}
		refs, err := r.references(kind, id, st, body, false)
		if err != nil {
			return err
		}
		if len(refs) != 2 {
			return malformed(kind, id, st, "expected 2 point references, have %d", len(refs))
		}
		s.Edges[id] = brep.Edge{refs[0], refs[1]}
		return nil
	}

	signed := r.PreserveOrientation && (kind == brep.WireLoopKind || kind == brep.ShellLoopKind)
	refs, err := r.references(kind, id, st, body, signed)
	if err != nil {
		return err
	}
	dup := false
	switch kind {
	case brep.WireLoopKind:
		_, dup = s.WireLoops[id]
		s.WireLoops[id] = refs
	case brep.FaceKind:
		_, dup = s.Faces[id]
		s.Faces[id] = refs
	case brep.ShellLoopKind:
		_, dup = s.ShellLoops[id]
		s.ShellLoops[id] = refs
	case brep.VolumeKind:
		_, dup = s.Volumes[id]
		s.Volumes[id] = refs
	case brep.PhysicalSurfaceKind:
		_, dup = s.PhysicalSurfaces[id]
		s.PhysicalSurfaces[id] = brep.PhysicalGroup{Members: refs}
	case brep.PhysicalVolumeKind:
		_, dup = s.PhysicalVolumes[id]
		s.PhysicalVolumes[id] = brep.PhysicalGroup{Members: refs}
	}
	if dup {
		return malformed(kind, id, st, "duplicate id")
	}
	return nil
}

func parsePoint(body string) (p brep.Point, err error) {
	fields := splitFields(body)
	if len(fields) < 3 || len(fields) > 4 {
		return p, fmt.Errorf("expected 3 or 4 fields, have %d", len(fields))
	}
	var x [3]float64
	for i := range x {
		if x[i], err = strconv.ParseFloat(fields[i], 64); err != nil {
			return p, fmt.Errorf("coordinate %d: %q is not a number", i+1, fields[i])
		}
		if x[i] > -SnapTolerance && x[i] < SnapTolerance {
			x[i] = 0
		}
	}
	p.X = r3.Vec{X: x[0], Y: x[1], Z: x[2]}
	if len(fields) == 4 {
		p.Sizing = fields[3]
	}
	return p, nil
}

func (r *Reader) references(kind brep.Kind, id int, st statement, body string, signed bool) ([]int, error) {
	fields := splitFields(body)
	if len(fields) == 0 {
		return nil, malformed(kind, id, st, "no references")
	}
	refs := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v == 0 {
			return nil, malformed(kind, id, st, "reference %q is not a non-zero integer", f)
		}
		if !signed && v < 0 {
			v = -v
		}
		refs[i] = v
	}
	return refs, nil
}

func splitFields(body string) (fields []string) {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	for _, f := range strings.Split(body, ",") {
		fields = append(fields, strings.TrimSpace(f))
	}
	return
}

func (r *Reader) periodic(s *brep.Store, st statement, dstText, srcText, trText string) error {
	dst, err := r.references(brep.PeriodicKind, 0, st, dstText, false)
	if err != nil {
		return err
	}
	src, err := r.references(brep.PeriodicKind, dst[0], st, srcText, false)
	if err != nil {
		return err
	}
	if len(dst) != len(src) {
		return malformed(brep.PeriodicKind, dst[0], st, "%d target faces for %d source faces", len(dst), len(src))
	}
	tr := splitFields(trText)
	if len(tr) != 3 {
		return malformed(brep.PeriodicKind, dst[0], st, "translation needs 3 components, have %d", len(tr))
	}
	var t [3]float64
	for i, f := range tr {
		if t[i], err = strconv.ParseFloat(f, 64); err != nil {
			return malformed(brep.PeriodicKind, dst[0], st, "translation component %q is not a number", f)
		}
	}
	for i := range dst {
		s.Periodic = append(s.Periodic, brep.PeriodicPair{
			Dst: dst[i], Src: src[i], Translation: r3.Vec{X: t[0], Y: t[1], Z: t[2]},
		})
	}
	return nil
}

// assignNamed gives quoted group names their codes once every numeric group
// is known: the reserved names get their fixed code, other names the next
// code free in their kind.
func (r *Reader) assignNamed(s *brep.Store) error {
	for _, ng := range r.named {
		groups := s.PhysicalVolumes
		if ng.kind == brep.PhysicalSurfaceKind {
			groups = s.PhysicalSurfaces
		}
		id := int(types.NewPhysicalTag(ng.name))
		if id == int(types.Tag_None) {
			id = int(types.Tag_Walls) + 1
			for _, used := range brep.SortedIDs(groups) {
				if used >= id {
					id = used + 1
				}
			}
		}
		if _, dup := groups[id]; dup {
			return malformed(ng.kind, id, statement{line: ng.line}, "group %q reuses code %d", ng.name, id)
		}
		groups[id] = brep.PhysicalGroup{Name: ng.name, Members: ng.refs}
	}
	return nil
}
