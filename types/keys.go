package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

/*
EdgeKey stores an edge's endpoints as point ids in a way that can be compared.
An edge between points [4] and [1] will always be stored as [1,4], so that two edges traversing the same
points in opposite directions produce the same key. Any int id fits, there is no packing limit.
*/
type EdgeKey [2]int

func NewEdgeKey(ends [2]int) EdgeKey {
	if ends[0] > ends[1] {
		return EdgeKey{ends[1], ends[0]}
	}
	return EdgeKey(ends)
}

func (ek EdgeKey) GetEnds(rev bool) (ends [2]int) {
	ends = [2]int(ek)
	if rev {
		ends[0], ends[1] = ends[1], ends[0]
	}
	return
}

/*
MemberKey identifies the unordered member set of a loop. Orientation signs are dropped and the members
are sorted, so loops listing the same edges (or faces) in any order and direction compare equal.
Repeated members are kept, the key describes a multiset.
*/
type MemberKey string

func NewMemberKey(members []int) MemberKey {
	abs := make([]int, len(members))
	for i, m := range members {
		if m < 0 {
			m = -m
		}
		abs[i] = m
	}
	sort.Ints(abs)
	var sb strings.Builder
	for i, m := range abs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(m))
	}
	return MemberKey(sb.String())
}

func (mk MemberKey) GetMembers() (members []int) {
	if len(mk) == 0 {
		return
	}
	for _, tok := range strings.Split(string(mk), ",") {
		m, err := strconv.Atoi(tok)
		if err != nil {
			panic(fmt.Errorf("corrupt member key %q: %v", string(mk), err))
		}
		members = append(members, m)
	}
	return
}
