// Copyright 2025 ClientPulse Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clientpulse/kb/ai"
	"github.com/clientpulse/kb/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Classifier implements ai.SignalClassifier using OpenAI-compatible chat APIs.
//
// The model replies with comma-separated signal codes (or NONE), which is a
// far more robust contract for small local models than structured JSON.
type Classifier struct {
	client llms.Model
	logger *slog.Logger
}

// codesByName maps a signal code (e.g. "RISK_BUDGET") to its type.
var codesByName = func() map[string]core.SignalType {
	m := make(map[string]core.SignalType, len(core.SignalTypes))
	for _, t := range core.SignalTypes {
		m[t.Code()] = t
	}
	return m
}()

// newClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newClassifier(config *ai.Config) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken("none"),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}

	return &Classifier{
		client: client,
		logger: slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewClassifier creates a new signal classifier using the provided configuration.
//
// Returns ai.SignalClassifier interface to enforce abstraction.
func NewClassifier(config *ai.Config) (ai.SignalClassifier, error) {
	return newClassifier(config)
}

// Classify asks the model which signal codes the text exhibits.
// Unknown codes in the reply are ignored; duplicates are collapsed.
func (c *Classifier) Classify(ctx context.Context, text string) ([]core.SignalType, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(classifierSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	// Try up to 3 times in case the model ignores the output contract.
	for attempt := 0; attempt < 3; attempt++ {
		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, wrapProviderErr(err)
		}

		if len(response.Choices) < 1 {
			c.logger.Debug("no choices returned from model")
			return []core.SignalType{}, nil
		}

		reply := strings.TrimSpace(response.Choices[0].Content)
		signals, ok := parseSignalCodes(reply)
		if !ok {
			c.logger.Warn("unrecognized classifier reply", "attempt", attempt+1, "reply", reply)
			continue
		}

		c.logger.Debug("classified text", "signals", len(signals))
		return signals, nil
	}

	return nil, fmt.Errorf("%w: classifier reply had no recognizable codes", ai.ErrMalformedResponse)
}

// parseSignalCodes parses a comma-separated code reply.
// Returns ok=false when nothing in the reply is recognizable, so the caller
// can retry.
func parseSignalCodes(reply string) ([]core.SignalType, bool) {
	if reply == "" {
		return nil, false
	}

	seen := make(map[core.SignalType]bool)
	signals := make([]core.SignalType, 0, 2)
	recognized := false

	for _, part := range strings.Split(reply, ",") {
		code := strings.ToUpper(strings.Trim(part, " \t\r\n.`\"'"))
		if code == "" {
			continue
		}
		if code == "NONE" {
			recognized = true
			continue
		}
		t, ok := codesByName[code]
		if !ok {
			continue
		}
		recognized = true
		if !seen[t] {
			seen[t] = true
			signals = append(signals, t)
		}
	}

	return signals, recognized
}
