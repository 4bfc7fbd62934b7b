// Package catalog holds the ordered list of security topics a report covers.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
)

// Topic is one analysis subject. Flagged topics go in the critical section.
type Topic struct {
	Name    string `yaml:"name"`
	Flagged bool   `yaml:"flagged"`
	Prompt  string `yaml:"prompt"`
}

var defaultTopics = []Topic{
	{
		Name:    "Consensus Mechanism",
		Flagged: true,
		Prompt:  "Explain the consensus mechanism, including how block producers are selected and the source of randomness. Identify known attacks against it and whether they have occurred.",
	},
	{
		Name:    "Validator Centralization",
		Flagged: true,
		Prompt:  "Assess how concentrated block production and stake are among validators, including the Nakamoto coefficient where available.",
	},
	{
		Name:    "51% and Reorganization Attacks",
		Flagged: true,
		Prompt:  "Describe the cost and feasibility of a majority attack or deep chain reorganization, and list any historical incidents.",
	},
	{
		Name:    "Smart Contract Risks",
		Flagged: true,
		Prompt:  "Describe the smart contract platform, its execution environment and notable contract-level exploits on this chain.",
	},
	{
		Name:    "Bridge and Cross-Chain Risks",
		Flagged: true,
		Prompt:  "List the main bridges to and from this chain, their trust models and any past bridge exploits.",
	},
	{
		Name:   "Validator Requirements",
		Prompt: "What are the validator requirements, including minimum stake, hardware requirements, and rewards structure?",
	},
	{
		Name:   "Cryptographic Methods",
		Prompt: "Describe the cryptographic methods used for transaction signing and block hashing.",
	},
	{
		Name:   "Transaction Finality",
		Prompt: "Explain how and when transactions become final, and the recommended confirmation count for exchanges.",
	},
	{
		Name:   "Governance and Upgrades",
		Prompt: "Describe how protocol upgrades are proposed, approved and deployed, and who can halt or fork the network.",
	},
	{
		Name:   "Client Diversity",
		Prompt: "List the node client implementations in use and their approximate network share.",
	},
	{
		Name:   "Security Incidents",
		Prompt: "Summarize public security incidents, outages and halts affecting this chain, with dates and sources.",
	},
	{
		Name:   "Whitepaper and Documentation",
		Prompt: "Provide links and summaries of official whitepapers and developer documentation.",
	},
}

// Default returns the built-in catalog. The slice is a fresh copy.
func Default() []Topic {
	out := make([]Topic, len(defaultTopics))
	copy(out, defaultTopics)
	return out
}

type catalogFile struct {
	Topics []Topic `yaml:"topics"`
}

// Load reads a catalog from a YAML file with a top-level "topics" list.
func Load(path string) ([]Topic, error) {
	// #nosec G304 - path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read topic catalog").
			WithContext(errors.ContextPath, path).
			Build()
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse topic catalog").
			WithContext(errors.ContextPath, path).
			Build()
	}
	if err := Validate(f.Topics); err != nil {
		return nil, err
	}
	return f.Topics, nil
}

// Validate rejects empty catalogs, blank names and names that collide
// ignoring case.
func Validate(topics []Topic) error {
	if len(topics) == 0 {
		return errors.ValidationError("topic catalog is empty").Build()
	}
	fold := cases.Fold()
	seen := make(map[string]string, len(topics))
	for i, t := range topics {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return errors.ValidationError(fmt.Sprintf("topic %d has no name", i)).Build()
		}
		key := fold.String(name)
		if prev, ok := seen[key]; ok {
			return errors.ValidationError("duplicate topic name").
				ForTopic(name).
				WithContext("conflicts_with", prev).
				Build()
		}
		seen[key] = name
	}
	return nil
}

// Partition splits topics into flagged and other, keeping input order.
func Partition(topics []Topic) (flagged, other []Topic) {
	for _, t := range topics {
		if t.Flagged {
			flagged = append(flagged, t)
		} else {
			other = append(other, t)
		}
	}
	return flagged, other
}

// Find returns the topic with the given name.
func Find(topics []Topic, name string) (Topic, bool) {
	for _, t := range topics {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}
