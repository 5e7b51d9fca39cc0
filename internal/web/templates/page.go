// Package templates holds the templ components for the expert page. Edit the
// .templ files and run templ generate.
package templates

// Page is everything the index page shows.
type Page struct {
	Personas    []string
	Selected    string
	Instruction string
	Question    string
	Warning     string
	Answered    bool
	// Answer is sanitised HTML and is written unescaped.
	Answer  string
	Failure string
}
