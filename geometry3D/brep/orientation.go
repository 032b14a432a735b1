package brep

// StripOrientation drops the direction signs of wire and shell loop members.
// Kernels that build faces from unsigned references (OpenCASCADE) reject
// negative ids.
func (s *Store) StripOrientation() {
	for _, loop := range s.WireLoops {
		for i, m := range loop {
			loop[i] = abs(m)
		}
	}
	for _, loop := range s.ShellLoops {
		for i, m := range loop {
			loop[i] = abs(m)
		}
	}
}

// RestoreSizing attaches a mesh size tag to every point, usually the name of
// a size variable defined by the meshing script.
func (s *Store) RestoreSizing(tag string) {
	for id, p := range s.Points {
		p.Sizing = tag
		s.Points[id] = p
	}
}
