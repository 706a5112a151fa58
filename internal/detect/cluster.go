package detect

import (
	"sort"

	"catlens/internal/domain"
)

// MasterStrategy picks the canonical member of a duplicate group.
// CostStrategy estimates the redundancy cost of keeping the non-master
// members. Both are business policy, not math, so they are injectable.
type (
	MasterStrategy func(members []domain.Item) string
	CostStrategy   func(members []domain.Item, masterID string) float64
)

// HighestPriceMaster keeps the premium-priced listing as canonical,
// breaking ties by lowest item ID.
func HighestPriceMaster(members []domain.Item) string {
	best := members[0]
	for _, m := range members[1:] {
		if m.Price > best.Price || (m.Price == best.Price && m.ID < best.ID) {
			best = m
		}
	}
	return best.ID
}

// NonMasterPriceCost values the redundant inventory as the summed price of
// every member other than the master.
func NonMasterPriceCost(members []domain.Item, masterID string) float64 {
	var cost float64
	for _, m := range members {
		if m.ID != masterID {
			cost += m.Price
		}
	}
	return cost
}

// Clusterer builds duplicate groups from accepted similarity edges.
type Clusterer struct {
	master MasterStrategy
	cost   CostStrategy
}

// NewClusterer creates a Clusterer. Nil strategies fall back to
// HighestPriceMaster and NonMasterPriceCost.
func NewClusterer(master MasterStrategy, cost CostStrategy) *Clusterer {
	if master == nil {
		master = HighestPriceMaster
	}
	if cost == nil {
		cost = NonMasterPriceCost
	}
	return &Clusterer{master: master, cost: cost}
}

// BuildGroups computes the connected components of the match graph.
// Transitive chains of matches end up in one group even when their
// endpoints were never directly scored. Items appearing in no edge belong
// to no group. Group IDs are assigned in increasing order of each group's
// minimum member ID, so identical input always produces identical output.
func (c *Clusterer) BuildGroups(edges []domain.SimilarityEdge, items map[string]domain.Item) []domain.DuplicateGroup {
	if len(edges) == 0 {
		return nil
	}

	uf := newUnionFind()
	for _, e := range edges {
		uf.union(e.ItemA, e.ItemB)
	}

	components := make(map[string][]string)
	for _, id := range uf.vertices() {
		root := uf.find(id)
		components[root] = append(components[root], id)
	}

	groups := make([]domain.DuplicateGroup, 0, len(components))
	for _, memberIDs := range components {
		if len(memberIDs) < 2 {
			continue
		}
		sort.Strings(memberIDs)

		members := make([]domain.Item, len(memberIDs))
		for i, id := range memberIDs {
			item, ok := items[id]
			if !ok {
				item = domain.Item{ID: id}
			}
			members[i] = item
		}

		masterID := c.master(members)
		groups = append(groups, domain.DuplicateGroup{
			MemberIDs:      memberIDs,
			MasterID:       masterID,
			RedundancyCost: c.cost(members, masterID),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].MemberIDs[0] < groups[j].MemberIDs[0]
	})
	for i := range groups {
		groups[i].GroupID = i + 1
	}

	return groups
}

// unionFind is a disjoint-set over item IDs with path compression and
// union by rank.
type unionFind struct {
	parent map[string]string
	rank   map[string]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[string]string),
		rank:   make(map[string]int),
	}
}

func (u *unionFind) add(id string) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
	}
}

func (u *unionFind) find(id string) string {
	u.add(id)
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[id] != root {
		u.parent[id], id = root, u.parent[id]
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

func (u *unionFind) vertices() []string {
	ids := make([]string, 0, len(u.parent))
	for id := range u.parent {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
