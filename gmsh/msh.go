package gmsh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Element type codes of the msh format used below.
const (
	TypeTriangle    = 2
	TypeTetrahedron = 4
)

type PhysicalName struct {
	Dim, Tag int
	Name     string
}

// Summary is what a meshing run produced, without the mesh itself.
type Summary struct {
	Version       string
	Binary        bool
	PhysicalNames []PhysicalName
	Nodes         int
	Elements      int
	ElementTypes  map[int]int // element count by type code
	PeriodicLinks int
}

func (s *Summary) Print() {
	fmt.Printf("msh %s: %d nodes, %d elements (%d tetrahedra, %d triangles), %d periodic links\n",
		s.Version, s.Nodes, s.Elements, s.ElementTypes[TypeTetrahedron], s.ElementTypes[TypeTriangle], s.PeriodicLinks)
	for _, pn := range s.PhysicalNames {
		fmt.Printf("  physical %dD %d %q\n", pn.Dim, pn.Tag, pn.Name)
	}
}

func ReadSummaryFile(filename string) (*Summary, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	sum, err := ReadSummary(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return sum, nil
}

// ReadSummary reads an ASCII msh file of version 2.2 or 4.x.
func ReadSummary(r io.Reader) (*Summary, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sum := &Summary{ElementTypes: make(map[int]int)}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") || strings.HasPrefix(line, "$End") {
			continue
		}
		var err error
		switch line {
		case "$MeshFormat":
			err = readMeshFormat(scanner, sum)
		case "$PhysicalNames":
			err = readPhysicalNames(scanner, sum)
		case "$Nodes":
			err = readNodes(scanner, sum)
		case "$Elements":
			err = readElements(scanner, sum)
		case "$Periodic":
			err = readPeriodic(scanner, sum)
		default:
			err = skipSection(scanner, "$End"+line[1:])
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if sum.Version == "" {
		return nil, fmt.Errorf("could not find $MeshFormat section")
	}
	return sum, nil
}

func (s *Summary) v4() bool { return strings.HasPrefix(s.Version, "4.") }

func nextFields(scanner *bufio.Scanner, section string) ([]string, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in %s", section)
	}
	return strings.Fields(scanner.Text()), nil
}

func atoi(section, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s count %q", section, s)
	}
	return n, nil
}

func readMeshFormat(scanner *bufio.Scanner, sum *Summary) error {
	parts, err := nextFields(scanner, "MeshFormat")
	if err != nil {
		return err
	}
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	sum.Version = parts[0]
	sum.Binary = parts[1] == "1"
	if !strings.HasPrefix(sum.Version, "2.") && !sum.v4() {
		return fmt.Errorf("unsupported Gmsh format version: %s", sum.Version)
	}
	if sum.Binary {
		return fmt.Errorf("binary msh files are not supported")
	}
	return skipSection(scanner, "$EndMeshFormat")
}

func readPhysicalNames(scanner *bufio.Scanner, sum *Summary) error {
	parts, err := nextFields(scanner, "PhysicalNames")
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return fmt.Errorf("missing PhysicalNames count")
	}
	n, err := atoi("PhysicalNames", parts[0])
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if parts, err = nextFields(scanner, "PhysicalNames"); err != nil {
			return err
		}
		if len(parts) < 3 {
			return fmt.Errorf("invalid physical name line")
		}
		pn := PhysicalName{Name: strings.Trim(strings.Join(parts[2:], " "), "\"")}
		pn.Dim, _ = strconv.Atoi(parts[0])
		pn.Tag, _ = strconv.Atoi(parts[1])
		sum.PhysicalNames = append(sum.PhysicalNames, pn)
	}
	return skipSection(scanner, "$EndPhysicalNames")
}

// readNodes takes the node count from the section header: the only line in
// version 2, the second field of the block summary line in version 4.
func readNodes(scanner *bufio.Scanner, sum *Summary) error {
	parts, err := nextFields(scanner, "Nodes")
	if err != nil {
		return err
	}
	idx := 0
	if sum.v4() {
		idx = 1
	}
	if len(parts) <= idx {
		return fmt.Errorf("invalid Nodes header")
	}
	if sum.Nodes, err = atoi("Nodes", parts[idx]); err != nil {
		return err
	}
	return skipSection(scanner, "$EndNodes")
}

func readElements(scanner *bufio.Scanner, sum *Summary) error {
	parts, err := nextFields(scanner, "Elements")
	if err != nil {
		return err
	}
	if sum.v4() {
		return readElements4(scanner, sum, parts)
	}
	if len(parts) == 0 {
		return fmt.Errorf("invalid Elements header")
	}
	if sum.Elements, err = atoi("Elements", parts[0]); err != nil {
		return err
	}
	for i := 0; i < sum.Elements; i++ {
		if parts, err = nextFields(scanner, "Elements"); err != nil {
			return err
		}
		if len(parts) < 5 {
			return fmt.Errorf("invalid element line")
		}
		etype, _ := strconv.Atoi(parts[1])
		sum.ElementTypes[etype]++
	}
	return skipSection(scanner, "$EndElements")
}

// readElements4 walks the entity blocks, each headed by
// "entityDim entityTag elementType numElementsInBlock".
func readElements4(scanner *bufio.Scanner, sum *Summary, header []string) (err error) {
	if len(header) < 2 {
		return fmt.Errorf("invalid Elements header")
	}
	blocks, err := atoi("Elements", header[0])
	if err != nil {
		return err
	}
	if sum.Elements, err = atoi("Elements", header[1]); err != nil {
		return err
	}
	for b := 0; b < blocks; b++ {
		parts, err := nextFields(scanner, "Elements")
		if err != nil {
			return err
		}
		if len(parts) < 4 {
			return fmt.Errorf("invalid element block header")
		}
		etype, _ := strconv.Atoi(parts[2])
		n, err := atoi("Elements", parts[3])
		if err != nil {
			return err
		}
		sum.ElementTypes[etype] += n
		for i := 0; i < n; i++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading elements")
			}
		}
	}
	return skipSection(scanner, "$EndElements")
}

// readPeriodic counts the periodic entity links; both versions lead with
// their number.
func readPeriodic(scanner *bufio.Scanner, sum *Summary) error {
	parts, err := nextFields(scanner, "Periodic")
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return fmt.Errorf("missing Periodic count")
	}
	if sum.PeriodicLinks, err = atoi("Periodic", parts[0]); err != nil {
		return err
	}
	return skipSection(scanner, "$EndPeriodic")
}

func skipSection(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("unexpected EOF, missing %s", endMarker)
}
