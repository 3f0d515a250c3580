package dom

// StaticRange is a pair of boundary points that is not updated when the
// tree changes.
// https://dom.whatwg.org/#interface-staticrange
type StaticRange struct {
	start, end BoundaryPoint
}

type StaticRangeInit struct {
	StartContainer *Node
	StartOffset    int
	EndContainer   *Node
	EndOffset      int
}

// NewStaticRange validates only the container kinds; offsets are taken as
// given.
func NewStaticRange(init StaticRangeInit) (*StaticRange, error) {
	for _, n := range []*Node{init.StartContainer, init.EndContainer} {
		if n == nil {
			return nil, newException(TypeError, "a static range needs both containers")
		}
		if n.NodeType == DocumentTypeNode || n.NodeType == AttrNode {
			return nil, newException(InvalidNodeTypeError, "a %s node cannot be a static range container", n.NodeType)
		}
	}
	s := &StaticRange{}
	s.start.Set(init.StartContainer, init.StartOffset, nil)
	s.end.Set(init.EndContainer, init.EndOffset, nil)
	return s, nil
}

func (s *StaticRange) StartContainer() *Node { return s.start.Container() }
func (s *StaticRange) StartOffset() int      { return s.start.Offset() }
func (s *StaticRange) EndContainer() *Node   { return s.end.Container() }
func (s *StaticRange) EndOffset() int        { return s.end.Offset() }

func (s *StaticRange) Collapsed() bool {
	return s.start.equal(&s.end)
}

// Valid reports whether both points are still inside their containers and
// in order within one tree.
// https://dom.whatwg.org/#staticrange-valid
func (s *StaticRange) Valid() bool {
	if s.start.Container().RootNode() != s.end.Container().RootNode() {
		return false
	}
	if s.StartOffset() < 0 || s.StartOffset() > s.start.Container().Length() {
		return false
	}
	if s.EndOffset() < 0 || s.EndOffset() > s.end.Container().Length() {
		return false
	}
	c, err := compareBoundaryPointValues(&s.start, &s.end)
	return err == nil && c <= 0
}

// ToRange creates a live range at the static range's boundary points.
func (s *StaticRange) ToRange() (*Range, error) {
	doc := s.start.Container().ownerDocumentOrSelf()
	if doc == nil {
		return nil, newException(WrongDocumentError, "the start container has no owner document")
	}
	return NewRangeWithBoundaries(doc, s.StartContainer(), s.StartOffset(), s.EndContainer(), s.EndOffset())
}
