package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .careteam.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to careteam! Let's configure your simulation.")
	fmt.Println()

	cfg := DefaultConfig()

	memberPrompt := promptui.Prompt{
		Label:   "Member name",
		Default: cfg.MemberName,
	}
	member, err := memberPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("reading member name: %w", err)
	}
	cfg.MemberName = member

	modelPrompt := promptui.Prompt{
		Label:   "OpenRouter model",
		Default: cfg.LLM.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	cfg.LLM.Model = model

	weeksPrompt := promptui.Prompt{
		Label:   "Journey length in weeks",
		Default: strconv.Itoa(cfg.TotalWeeks),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return fmt.Errorf("enter a positive integer")
			}
			return nil
		},
	}
	weeks, err := weeksPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("reading total weeks: %w", err)
	}
	cfg.TotalWeeks, _ = strconv.Atoi(weeks)

	mockSelect := promptui.Select{
		Label: "Completion mode",
		Items: []string{"mock (no API key needed)", "live (OpenRouter)"},
	}
	idx, _, err := mockSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("reading completion mode: %w", err)
	}
	cfg.LLM.Mock = idx == 0

	if err := cfg.Save(".careteam.yml"); err != nil {
		return nil, err
	}
	fmt.Println("\nConfiguration saved to .careteam.yml")

	return cfg, nil
}
