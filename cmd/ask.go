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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	termutil "github.com/andrew-d/go-termutil"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zr3/senmon/internal/tui"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the selected expert one question",
	Long: `Ask the selected expert one question and print the answer.

The question is taken from the arguments, from stdin, or both:

	senmon ask -p "Cooking Expert" "How long do I boil an egg?"
	cat main.go | senmon ask "What does this do?"`,
	Run: func(cmd *cobra.Command, args []string) {
		// if stdin was provided, add that to prompt
		var piped io.Reader
		if !termutil.Isatty(os.Stdin.Fd()) {
			piped = bufio.NewReader(os.Stdin)
		}
		userPrompt := buildQuestion(args, piped)
		if strings.TrimSpace(userPrompt) == "" {
			color.New(color.FgYellow).Fprintln(os.Stderr, "Please enter a question.")
			os.Exit(1)
		}

		res := loadResources()
		expertID := personaID(res)

		// print something for ux
		s := spinner.New(spinner.CharSets[19], 100*time.Millisecond)
		if !viper.GetBool("quiet") {
			fmt.Println("asking " + expertName(res.Catalog, expertID) + "!")
			s.Color("cyan")
			s.Prefix = "╰─ "
			s.Start()
		}

		result := res.Service.Respond(context.Background(), userPrompt, expertID)

		if s.Active() {
			s.Stop()
		}
		if !result.OK() {
			color.New(color.FgRed).Fprintln(os.Stderr, result.String())
			os.Exit(1)
		}

		raw, _ := cmd.Flags().GetBool("raw")
		if raw || viper.GetBool("quiet") {
			fmt.Println(result.Text)
			return
		}
		fmt.Print(tui.RenderMarkdown(result.Text, 0))
	},
}

// buildQuestion joins the arguments and appends piped input after a blank
// line.
func buildQuestion(args []string, piped io.Reader) string {
	userPrompt := strings.Join(args, " ")
	if piped == nil {
		return userPrompt
	}
	pipedinput, err := io.ReadAll(piped)
	if err != nil || len(pipedinput) == 0 {
		return userPrompt
	}
	if userPrompt != "" {
		userPrompt += "\n\n"
	}
	return userPrompt + string(pipedinput)
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().Bool("raw", false, "print the answer without markdown rendering")
}
