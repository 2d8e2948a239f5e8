package output

import (
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/StinkyLord/rjs-builder/internal/mapping"
	"github.com/StinkyLord/rjs-builder/internal/model"
)

// MappedFile is the module path a file resolved to.
type MappedFile struct {
	File       string `json:"file"`
	ModulePath string `json:"modulePath,omitempty"`
	Mapped     bool   `json:"mapped"`
}

// FormulaeTable renders asset formulae, one row per asset.
func FormulaeTable(w io.Writer, formulae []model.Formula) error {
	table := tablewriter.NewWriter(w)
	table.Header("Name", "Output", "Input")
	for _, f := range formulae {
		if err := table.Append([]string{f.Name, f.Output, f.Input}); err != nil {
			return err
		}
	}
	return table.Render()
}

// MappingTable renders the result of resolving files. Unmapped files show a
// red "false" in place of the module path.
func MappingTable(w io.Writer, files []MappedFile) error {
	table := tablewriter.NewWriter(w)
	table.Header("File", "Module path")
	for _, f := range files {
		modulePath := f.ModulePath
		if !f.Mapped {
			modulePath = color.RedString("false")
		}
		if err := table.Append([]string{f.File, modulePath}); err != nil {
			return err
		}
	}
	return table.Render()
}

// NamespacesTable renders the namespace table in match order.
func NamespacesTable(w io.Writer, entries []mapping.Entry) error {
	table := tablewriter.NewWriter(w)
	table.Header("Namespace", "Root", "Kind")
	for _, e := range entries {
		kind := "file"
		if e.IsDir {
			kind = "dir"
		}
		namespace := e.Namespace
		if namespace == "" {
			namespace = "(base)"
		}
		if err := table.Append([]string{namespace, e.RealPath, kind}); err != nil {
			return err
		}
	}
	return table.Render()
}
