package brep

// Validate checks referential integrity: every edge, loop, face, shell,
// volume, periodic pair and physical group references existing lower-kind
// entities and no id is zero. The first violation in dependency order and
// ascending id order is returned.
func (s *Store) Validate() error {
	for _, id := range SortedIDs(s.Points) {
		if id <= 0 {
			return &EntityError{Kind: PointKind, ID: id, Err: ErrMalformedRecord, Detail: "non-positive id"}
		}
	}
	for _, id := range SortedIDs(s.Edges) {
		if _, err := s.EdgePoints(id); err != nil {
			return err
		}
	}
	for _, id := range SortedIDs(s.WireLoops) {
		for _, e := range s.WireLoops[id] {
			if _, ok := s.Edges[abs(e)]; !ok {
				return dangling(WireLoopKind, id, "references missing edge %d", abs(e))
			}
		}
	}
	for _, id := range SortedIDs(s.Faces) {
		for _, wl := range s.Faces[id] {
			if _, ok := s.WireLoops[abs(wl)]; !ok {
				return dangling(FaceKind, id, "references missing wire loop %d", abs(wl))
			}
		}
	}
	for _, id := range SortedIDs(s.ShellLoops) {
		for _, f := range s.ShellLoops[id] {
			if _, ok := s.Faces[abs(f)]; !ok {
				return dangling(ShellLoopKind, id, "references missing face %d", abs(f))
			}
		}
	}
	for _, id := range SortedIDs(s.Volumes) {
		for _, sl := range s.Volumes[id] {
			if _, ok := s.ShellLoops[abs(sl)]; !ok {
				return dangling(VolumeKind, id, "references missing shell loop %d", abs(sl))
			}
		}
	}
	for _, pp := range s.Periodic {
		for _, f := range []int{pp.Dst, pp.Src} {
			if _, ok := s.Faces[f]; !ok {
				return dangling(PeriodicKind, pp.Dst, "references missing face %d", f)
			}
		}
	}
	for _, id := range SortedIDs(s.PhysicalSurfaces) {
		for _, f := range s.PhysicalSurfaces[id].Members {
			if _, ok := s.Faces[abs(f)]; !ok {
				return dangling(PhysicalSurfaceKind, id, "references missing face %d", abs(f))
			}
		}
	}
	for _, id := range SortedIDs(s.PhysicalVolumes) {
		for _, v := range s.PhysicalVolumes[id].Members {
			if _, ok := s.Volumes[abs(v)]; !ok {
				return dangling(PhysicalVolumeKind, id, "references missing volume %d", abs(v))
			}
		}
	}
	return nil
}
