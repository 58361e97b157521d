package graph

var palette = map[NodeType]string{
	TypeHallway:   "#21243D",
	TypeClassroom: "#88E1F2",
	TypeToilet:    "#FFD082",
	TypeUnknown:   "#FF7C7C",
	TypeStair:     "#CCCCFF",
	TypeLift:      "#AF7AC5",
	TypeEntrance:  "#FFD700",
	TypeRoad:      "#84DCC6",
	TypeExit:      "#FF686B",
}

// Color returns the fill color used to draw nodes of type t.
// Unknown types are drawn grey.
func Color(t NodeType) string {
	if c, ok := palette[t]; ok {
		return c
	}
	return "#CCCCCC"
}
