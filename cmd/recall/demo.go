package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultQuestions is a customer-support FAQ session. Several questions
// repeat so later occurrences are answered from the cache.
var defaultQuestions = []string{
	"What is the product delivery time?",
	"How do I cancel my subscription?",
	"Is there an interest-free installment plan?",
	"Which models are available?",
	"How do I update my account details?",
	"Which payment methods do you accept?",
	"How do I change the delivery address?",
	"How do I exchange a defective product?",
	"Which models are available?",
	"What are your opening hours?",
	"How do I get a copy of my invoice?",
	"What are the benefits of the rewards club?",
	"How do I cancel my subscription?",
	"Is there an interest-free installment plan?",
	"What is the product delivery time?",
	"How do I update my account details?",
	"Is the website safe for purchases?",
	"Do you deliver on Saturdays?",
	"How do I contact support?",
	"How do I get a copy of my invoice?",
	"Do you ship internationally?",
	"What are the benefits of the rewards club?",
	"How do I check my balance?",
	"How do I issue an electronic tax receipt?",
	"Which online courses do you offer?",
	"How do I schedule a technician visit?",
	"How can I change my plan?",
	"I forgot my password, how do I recover it?",
	"How do I file a complaint with the ombudsman?",
	"What are the customer service channels?",
	"How do I cancel my subscription?",
	"How do I update my account details?",
	"Is there an interest-free installment plan?",
	"Which payment methods do you accept?",
	"How do I contact support?",
}

type questionsFileContent struct {
	Questions []string `yaml:"questions"`
}

// loadQuestions reads a YAML file of the form
//
//	questions:
//	  - What is the product delivery time?
func loadQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions file: %w", err)
	}

	var content questionsFileContent
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to parse questions file: %w", err)
	}

	questions := make([]string, 0, len(content.Questions))
	for _, q := range content.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in %s", path)
	}

	return questions, nil
}
