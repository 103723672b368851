package ui

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"

	"github.com/iishyfishyy/recall/internal/config"
	"github.com/iishyfishyy/recall/internal/semcache"
)

// ShowSection prints a bold section header
func ShowSection(title string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n%s\n", title)
}

// ShowResult displays how a question was answered
func ShowResult(res semcache.Result) {
	if res.Hit {
		green := color.New(color.FgGreen, color.Bold)
		green.Printf("✓ %s\n", HitLine(res))
	} else {
		yellow := color.New(color.FgYellow, color.Bold)
		yellow.Printf("→ %s\n", MissLine(res))
	}
	fmt.Printf("  %s\n", res.Answer)
}

// HitLine describes a cache hit
func HitLine(res semcache.Result) string {
	return fmt.Sprintf("Cache hit (confidence: %.2f)", res.Score)
}

// MissLine describes a cache miss and the routed model
func MissLine(res semcache.Result) string {
	return fmt.Sprintf("Cache miss, routed to %s", res.Model)
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}

// PromptQuestion asks the user for the next question. An empty answer
// ends the session.
func PromptQuestion() (string, error) {
	var question string
	prompt := &survey.Input{
		Message: "Question (empty to quit):",
	}

	if err := survey.AskOne(prompt, &question); err != nil {
		return "", err
	}

	return question, nil
}

// PromptYesNo asks a yes/no question
func PromptYesNo(message string, def bool) (bool, error) {
	answer := def
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}

	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}

	return answer, nil
}

// ConfigureSettings walks the user through the tunable settings, starting
// from cfg, and returns the edited copy
func ConfigureSettings(cfg *config.Config) (*config.Config, error) {
	edited := *cfg

	threshold := strconv.FormatFloat(cfg.Cache.Threshold, 'f', -1, 64)
	cutoff := strconv.Itoa(cfg.Router.Cutoff)

	questions := []*survey.Question{
		{
			Name: "threshold",
			Prompt: &survey.Input{
				Message: "Similarity threshold for a cache hit:",
				Default: threshold,
			},
			Validate: validateFloat,
		},
		{
			Name: "cutoff",
			Prompt: &survey.Input{
				Message: "Word count at which the advanced model is used:",
				Default: cutoff,
			},
			Validate: validateInt,
		},
		{
			Name: "cheap",
			Prompt: &survey.Input{
				Message: "Cheap model:",
				Default: cfg.Router.CheapModel,
			},
			Validate: survey.Required,
		},
		{
			Name: "advanced",
			Prompt: &survey.Input{
				Message: "Advanced model:",
				Default: cfg.Router.AdvancedModel,
			},
			Validate: survey.Required,
		},
		{
			Name: "persist",
			Prompt: &survey.Confirm{
				Message: "Keep records across restarts?",
				Default: cfg.Storage.Persist,
			},
		},
	}

	answers := struct {
		Threshold string `survey:"threshold"`
		Cutoff    string `survey:"cutoff"`
		Cheap     string `survey:"cheap"`
		Advanced  string `survey:"advanced"`
		Persist   bool   `survey:"persist"`
	}{}

	if err := survey.Ask(questions, &answers); err != nil {
		return nil, err
	}

	var err error
	if edited.Cache.Threshold, err = strconv.ParseFloat(answers.Threshold, 64); err != nil {
		return nil, fmt.Errorf("invalid threshold: %w", err)
	}
	if edited.Router.Cutoff, err = strconv.Atoi(answers.Cutoff); err != nil {
		return nil, fmt.Errorf("invalid cutoff: %w", err)
	}
	edited.Router.CheapModel = answers.Cheap
	edited.Router.AdvancedModel = answers.Advanced
	edited.Storage.Persist = answers.Persist

	return &edited, nil
}

func validateFloat(ans interface{}) error {
	s, _ := ans.(string)
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	return nil
}

func validateInt(ans interface{}) error {
	s, _ := ans.(string)
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("%q is not a whole number", s)
	}
	return nil
}
