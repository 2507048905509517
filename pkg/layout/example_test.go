package layout_test

import (
	"fmt"

	"github.com/matzehuels/laneflow/pkg/flow"
	"github.com/matzehuels/laneflow/pkg/layout"
)

func ExampleCompute() {
	doc := &flow.Document{
		Roles: []flow.Role{
			{ID: "editor", Name: "Editor"},
			{ID: "site", Name: "Site", Type: flow.RoleSystem},
		},
		Activities: []flow.Activity{
			{ID: "draft", Name: "Write draft", RoleID: "editor"},
			{ID: "review", Name: "Review draft", RoleID: "editor"},
			{ID: "publish", Name: "Publish", RoleID: "site"},
		},
		Transitions: []flow.Transition{
			{Source: "draft", Target: "review"},
			{Source: "review", Target: "publish"},
		},
	}
	doc.Normalize()

	opts := layout.DefaultOptions()
	opts.Scale = false
	m, err := layout.Compute(doc, opts)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("lanes: %d, ranks: %d\n", len(m.Lanes), len(m.Ranks))
	for _, id := range []string{"draft", "review", "publish"} {
		n := m.NodeByID(id)
		fmt.Printf("%s: lane %d, rank %d\n", id, n.Lane, n.Rank)
	}
	// Output:
	// lanes: 2, ranks: 3
	// draft: lane 0, rank 0
	// review: lane 0, rank 1
	// publish: lane 1, rank 2
}
