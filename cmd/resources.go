package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"zr3/senmon/internal/expert"
	"zr3/senmon/internal/llm"
	"zr3/senmon/internal/persona"
)

type LoadedResources struct {
	Client  llm.Client
	Catalog *persona.Catalog
	Service *expert.Service
	Strict  bool
}

var secretEnv = map[string]string{
	llm.ProviderOpenAI: "OPENAI_API_KEY",
	llm.ProviderGemini: "GEMINI_API_KEY",
}

func loadCatalog(v *viper.Viper) (*persona.Catalog, error) {
	path := v.GetString("personas-file")
	if path == "" {
		return persona.Default(), nil
	}
	return persona.LoadFile(path)
}

func llmConfig(v *viper.Viper) llm.Config {
	provider := strings.ToLower(v.GetString("provider"))
	if provider == "" {
		provider = llm.ProviderOpenAI
	}
	return llm.Config{
		Provider: provider,
		APIKey:   v.GetString("secrets." + provider + "-key"),
		Model:    v.GetString("model"),
		BaseURL:  v.GetString("base-url"),
	}
}

// newResources builds the client once for the whole process.
func newResources(ctx context.Context, v *viper.Viper) (*LoadedResources, error) {
	catalog, err := loadCatalog(v)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(ctx, llmConfig(v))
	if err != nil {
		return nil, err
	}
	return &LoadedResources{
		Client:  client,
		Catalog: catalog,
		Service: expert.NewService(catalog, client),
		Strict:  v.GetBool("strict-personas"),
	}, nil
}

// configDiagnostic explains a start-up failure and how to fix it.
func configDiagnostic(err error, provider string) (string, string) {
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		env := secretEnv[provider]
		return fmt.Sprintf("⚠️ The %s API key is not set.", provider),
			fmt.Sprintf("Set %s in the environment or .env, or secrets.%s-key in the config file.", env, provider)
	case errors.Is(err, llm.ErrUnknownProvider):
		return fmt.Sprintf("⚠️ Unknown provider %q.", provider),
			"Use --provider openai or --provider gemini."
	case errors.Is(err, persona.ErrEmptyCatalog):
		return "⚠️ The persona file defines no personas.",
			"Add at least one entry under personas: or unset personas-file."
	default:
		return "⚠️ Could not start senmon.", err.Error()
	}
}

// loadResources halts the process when the client cannot be built.
func loadResources() *LoadedResources {
	v := viper.GetViper()
	res, err := newResources(context.Background(), v)
	if err != nil {
		printDiagnostic(os.Stderr, err, llmConfig(v).Provider)
		log.Fatal(err)
	}
	return res
}

// printDiagnostic writes the problem in red followed by the fix in cyan.
func printDiagnostic(w io.Writer, err error, provider string) {
	msg, hint := configDiagnostic(err, provider)
	color.New(color.FgRed).Fprintln(w, msg)
	color.New(color.FgCyan).Fprintln(w, hint)
}

// expertName is the persona that will actually answer for id.
func expertName(catalog *persona.Catalog, id string) string {
	if p, ok := catalog.Get(id); ok {
		return p.ID
	}
	return catalog.Default().ID
}

// personaID resolves the --persona flag against the catalog. Unknown ids are
// left for the catalog's fallback unless strict-personas is set.
func personaID(res *LoadedResources) string {
	id := viper.GetString("persona")
	if id == "" {
		return res.Catalog.Default().ID
	}
	if res.Strict {
		checkError(res.Catalog.Validate(id), "unknown expert: "+id, true)
	}
	return id
}
