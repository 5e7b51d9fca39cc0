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
	"github.com/spf13/cobra"

	"zr3/senmon/internal/tui"
)

// formCmd represents the form command
var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Open the expert form in the terminal",
	Long: `Open an interactive form: choose an expert, type a question and press
ctrl+s to get the answer. Tab switches between the expert list and the
question box.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		res := loadResources()
		form := tui.NewForm(res.Service, personaID(res))
		checkError(tui.Run(form), "the form stopped unexpectedly", true)
	},
}

func init() {
	rootCmd.AddCommand(formCmd)
}
