package types

import "strings"

// PhysicalTag is the integer code of a physical group. The persisted format
// allows a quoted name in place of the numeric id for the reserved groups.
type PhysicalTag uint8

const (
	Tag_None PhysicalTag = iota
	Tag_Cells
	Tag_Walls
)

var TagNameMap = map[string]PhysicalTag{
	"cells": Tag_Cells,
	"walls": Tag_Walls,
}

func (pt PhysicalTag) String() string {
	switch pt {
	case Tag_Cells:
		return "cells"
	case Tag_Walls:
		return "walls"
	}
	return "none"
}

// NewPhysicalTag maps a (possibly quoted) group name to its reserved code.
// Unknown names return Tag_None.
func NewPhysicalTag(name string) PhysicalTag {
	name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"`))
	if tag, ok := TagNameMap[name]; ok {
		return tag
	}
	return Tag_None
}
