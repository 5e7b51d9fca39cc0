/*
Copyright © 2023 Zak Reynolds <zak.reynolds@zakjr.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zr3/senmon/internal/persona"
)

// personasCmd represents the personas command
var personasCmd = &cobra.Command{
	Args:  cobra.MaximumNArgs(1),
	Use:   "personas [id]",
	Short: "List the experts, or show the instruction of one",
	Long: `Without an argument, list every expert and its system instruction. The
first expert is the default.

With an id, print that expert's instruction. Unknown ids show the default
expert, unless strict-personas is set.

--yaml prints the table in the format read by the personas-file setting.`,
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := loadCatalog(viper.GetViper())
		checkError(err, "could not load personas", true)

		if len(args) == 1 {
			id := args[0]
			if viper.GetBool("strict-personas") {
				checkError(catalog.Validate(id), "unknown expert: "+id, true)
			}
			if _, ok := catalog.Get(id); !ok {
				fmt.Fprintf(os.Stderr, "no expert %q, showing the default %q\n", id, catalog.Default().ID)
			}
			fmt.Println(catalog.Lookup(id))
			return
		}

		asYAML, _ := cmd.Flags().GetBool("yaml")
		if asYAML {
			checkError(persona.Dump(os.Stdout, catalog), "could not write personas", true)
			return
		}
		renderPersonaTable(os.Stdout, catalog)
	},
}

func renderPersonaTable(w io.Writer, catalog *persona.Catalog) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Expert", "Instruction"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 70, WidthMaxEnforcer: text.WrapSoft},
	})

	def := catalog.Default().ID
	for i, p := range catalog.All() {
		name := p.ID
		if p.ID == def {
			name += " (default)"
		}
		t.AppendRow(table.Row{i + 1, name, p.Instruction})
	}
	t.Render()
}

func init() {
	rootCmd.AddCommand(personasCmd)

	personasCmd.Flags().Bool("yaml", false, "print the persona table as YAML")
}
