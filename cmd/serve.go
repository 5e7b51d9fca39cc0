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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zr3/senmon/internal/web"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the expert form as a web page",
	Long: `Serve the single-page expert form over HTTP, plus a JSON API:

	GET  /               the form
	POST /               submit the form
	GET  /api/personas   list the experts
	POST /api/ask        {"persona": "...", "question": "..."}`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		res := loadResources()
		server := web.NewServer(res.Service, res.Strict)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := viper.GetString("addr")
		go func() {
			if !viper.GetBool("quiet") {
				fmt.Println("serving the expert form on " + addr)
			}
			if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				checkError(err, "could not start the web server", true)
			}
		}()

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		checkError(server.Shutdown(shutdownCtx), "could not stop the web server cleanly", false)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8501", "address to listen on")
	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}
