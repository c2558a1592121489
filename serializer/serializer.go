// Package serializer converts between HTML markup and the rich-text document
// model by walking trees and dispatching every node through a rule chain.
package serializer

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/rgonek/richtext-html/rulechain"
)

// Serializer converts HTML to documents and back. It is immutable and safe
// for concurrent use.
type Serializer struct {
	config Config
	chain  *rulechain.Chain
	logger logrus.FieldLogger
}

// state holds per-call mutable state.
type state struct {
	config   Config
	chain    *rulechain.Chain
	logger   logrus.FieldLogger
	warnings []Warning
}

// New creates a Serializer with the given config.
func New(config Config) (*Serializer, error) {
	cfg := config.applyDefaults().clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rules := cfg.Rules
	if len(rules) == 0 {
		vocabulary := DefaultVocabulary().Merge(Vocabulary{
			Blocks: cfg.ExtraBlockTags,
			Marks:  cfg.ExtraMarkTags,
		})
		rules = Rules(vocabulary)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}

	return &Serializer{
		config: cfg,
		chain:  rulechain.New(rules...),
		logger: logger,
	}, nil
}

// Chain returns the rule chain used for dispatch.
func (s *Serializer) Chain() *rulechain.Chain {
	return s.chain
}

func (s *Serializer) newState() *state {
	return &state{
		config: s.config,
		chain:  s.chain,
		logger: s.logger,
	}
}

func (st *state) addWarning(warningType WarningType, nodeType, message string) {
	st.warnings = append(st.warnings, Warning{
		Type:     warningType,
		NodeType: nodeType,
		Message:  message,
	})
	st.logger.WithFields(logrus.Fields{
		"warning": warningType,
		"node":    nodeType,
	}).Debug(message)
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
