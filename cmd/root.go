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
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zr3/senmon/internal/llm"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "senmon",
	Short: "Ask an AI expert of your choice",
	Long: `senmon lets you pick one of a few expert personas (programming, cooking,
health & fitness, travel) and ask it a question. The answer comes from a single
chat completion with the persona's instruction as the system message.

	senmon ask "How do I read a file in Go?"
	senmon ask -p "Travel Expert" "Three days in Kyoto?"
	senmon form      # interactive form in the terminal
	senmon serve     # the same form as a web page`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/senmon/config.yml)")

	rootCmd.PersistentFlags().Bool("quiet", false, "hide the CLI ux and only show model output")
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	rootCmd.PersistentFlags().StringP("persona", "p", "", "expert to ask (default is the first expert)")
	viper.BindPFlag("persona", rootCmd.PersistentFlags().Lookup("persona"))

	rootCmd.PersistentFlags().String("provider", "", "text generation provider: openai or gemini")
	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))

	rootCmd.PersistentFlags().String("model", "", "model identifier (default depends on the provider)")
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile == "" {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		configureViper(viper.GetViper(), home+"/.config/senmon/", "")
	} else {
		configureViper(viper.GetViper(), "", cfgFile)
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "could not load config file:", err)
		}
	}
}

func configureViper(v *viper.Viper, configPath, configFile string) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(configPath)
		v.SetConfigType("yml")
		v.SetConfigName("config")
	}

	v.SetDefault("provider", llm.ProviderOpenAI)
	v.SetDefault("addr", ":8501")
	v.SetDefault("strict-personas", false)

	v.BindEnv("secrets.openai-key", "OPENAI_API_KEY")
	v.BindEnv("secrets.gemini-key", "GEMINI_API_KEY")
	// STRICT_PERSONAS, PERSONAS_FILE, BASE_URL ...
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv() // read in environment variables that match
}

func checkError(err error, message string, isFatal bool) {
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, message)
		if isFatal {
			log.Fatal(err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
