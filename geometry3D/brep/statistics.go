package brep

import "fmt"

// PrintStatistics prints entity counts and the loop size histogram
func (s *Store) PrintStatistics() {
	fmt.Printf("Geometry Statistics:\n")
	for _, k := range Kinds() {
		fmt.Printf("  %-16s: %d\n", k, s.Len(k))
	}

	// Count faces with holes and volumes with inner shells
	var facesWithHoles, volumesWithHoles int
	for _, f := range s.Faces {
		if len(f) > 1 {
			facesWithHoles++
		}
	}
	for _, v := range s.Volumes {
		if len(v) > 1 {
			volumesWithHoles++
		}
	}
	fmt.Printf("  Faces with holes: %d\n", facesWithHoles)
	fmt.Printf("  Volumes with inner shells: %d\n", volumesWithHoles)

	loopSizes := make(map[int]int)
	for _, l := range s.WireLoops {
		loopSizes[len(l)]++
	}
	fmt.Printf("  Wire loop sizes:\n")
	for _, n := range SortedIDs(loopSizes) {
		fmt.Printf("    %d edges: %d\n", n, loopSizes[n])
	}
}
