// Package output renders command results as JSON, tables or trees.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/StinkyLord/rjs-builder/internal/model"
)

// WriteModuleTree serialises the module tree as JSON and writes it to the
// given output path. If outputPath is "-", it writes to stdout.
//
// The output is a JSON array with one node per declared module. Each node
// carries a "children" array with its include and exclude edges, expanded
// recursively.
//
// Example output:
//
//	[
//	  {
//	    "name": "app/main",
//	    "relation": "module",
//	    "declared": true,
//	    "children": [
//	      { "name": "app/router", "relation": "include", "declared": false },
//	      {
//	        "name": "app/common",
//	        "relation": "exclude",
//	        "declared": true,
//	        "children": [
//	          { "name": "app/util", "relation": "include", "declared": false }
//	        ]
//	      }
//	    ]
//	  }
//	]
func WriteModuleTree(tree *model.ModuleTree, outputPath string) error {
	if tree == nil || len(tree.Roots) == 0 {
		// Emit an empty array rather than null
		return WriteJSON(outputPath, []struct{}{})
	}

	return WriteJSON(outputPath, tree.Roots)
}

// RenderModuleTree writes the module tree as indented text. Excluded
// modules are marked in red, cycles in yellow.
func RenderModuleTree(w io.Writer, tree *model.ModuleTree) error {
	if tree == nil || len(tree.Roots) == 0 {
		_, err := fmt.Fprintln(w, "No modules configured")
		return err
	}

	var sb strings.Builder
	for _, root := range tree.Roots {
		sb.WriteString(color.CyanString(root.Name))
		sb.WriteByte('\n')
		renderChildren(&sb, root.Children, "")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderChildren(sb *strings.Builder, nodes []*model.ModuleNode, prefix string) {
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}

		marker := color.GreenString("+")
		if n.Relation == model.RelationExclude {
			marker = color.RedString("-")
		}

		line := n.Name
		if n.Cycle {
			line += " " + color.YellowString("(cycle)")
		}

		fmt.Fprintf(sb, "%s%s%s %s\n", prefix, branch, marker, line)
		renderChildren(sb, n.Children, prefix+next)
	}
}

// WriteJSON marshals v as indented JSON and writes it to outputPath (or
// stdout if "-").
func WriteJSON(outputPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		if err == nil {
			_, err = os.Stdout.WriteString("\n")
		}
		return err
	}

	return os.WriteFile(outputPath, append(data, '\n'), 0644)
}
