package brep

// Kind enumerates the entity collections held by a Store, in dependency
// order: every kind only references kinds declared before it.
type Kind int

const (
	PointKind Kind = iota
	EdgeKind
	WireLoopKind
	FaceKind
	ShellLoopKind
	VolumeKind
	PeriodicKind
	PhysicalSurfaceKind
	PhysicalVolumeKind
)

var kindNames = [...]string{
	"Point", "Edge", "WireLoop", "Face", "ShellLoop", "Volume",
	"PeriodicPair", "PhysicalSurface", "PhysicalVolume",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Kinds lists every entity kind in dependency order.
func Kinds() []Kind {
	return []Kind{
		PointKind, EdgeKind, WireLoopKind, FaceKind, ShellLoopKind, VolumeKind,
		PeriodicKind, PhysicalSurfaceKind, PhysicalVolumeKind,
	}
}

// ParseKind resolves a kind by its name, case sensitive.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return -1, &EntityError{Kind: -1, Err: ErrUnknownEntityKind, Detail: name}
}
