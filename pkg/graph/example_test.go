package graph_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/depforce/pkg/graph"
)

func ExampleWriteGraph() {
	g := graph.GraphData{
		Nodes: []graph.Node{{ID: "app@1.0.0", Name: "app", Version: "1.0.0", Depth: 1}},
	}

	var buf bytes.Buffer
	if err := graph.WriteGraph(&buf, g); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodesList": [
	//     {
	//       "id": "app@1.0.0",
	//       "name": "app",
	//       "version": "1.0.0",
	//       "description": "",
	//       "dir": "",
	//       "depth": 1,
	//       "isMultipleVersions": false
	//     }
	//   ],
	//   "edgesList": []
	// }
}

func ExampleReadGraph() {
	jsonData := `{
		"nodesList": [
			{"id": "app@1.0.0", "name": "app", "depth": 2},
			{"id": "lib@1.0.0", "name": "lib", "depth": 1, "isMultipleVersions": true},
			{"id": "lib@2.0.0", "name": "lib", "depth": 0, "isMultipleVersions": true}
		],
		"edgesList": [
			{"sourceId": "app@1.0.0", "targetId": "lib@1.0.0"},
			{"sourceId": "lib@1.0.0", "targetId": "lib@2.0.0"}
		]
	}`

	g, err := graph.ReadGraph(strings.NewReader(jsonData))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("max depth:", g.MaxDepth())
	for i, n := range g.Nodes {
		fmt.Printf("%s fill=%s\n", n.ID, graph.Dark.NodeFill(i, n))
	}
	// Output:
	// max depth: 3
	// app@1.0.0 fill=#ffa500
	// lib@1.0.0 fill=#f00
	// lib@2.0.0 fill=#f00
}
