// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/openmedix/mediq-tui/internal/model"
)

// =============================================================================
// ENVELOPE
// =============================================================================

// Chunk type discriminants carried by the envelope's integer "type" field.
const (
	ChunkContent  = 4 // answer text, reasoning text, or entity JSON
	ChunkTool     = 5 // tool-status records or reference groups
	ChunkMetadata = 6 // diagnostic metadata, no message mutation
	ChunkEntity   = 7 // entity payload, unconditional replacement
)

// Envelope is the {type, message} JSON wrapper inside a data frame.
type Envelope struct {
	Type             int    `json:"type"`
	Message          string `json:"message"`
	ReasoningMessage string `json:"reasoningMessage,omitempty"`
	SessionID        string `json:"sessionId,omitempty"`
	UserID           string `json:"userId,omitempty"`
	FunctionID       int    `json:"functionId,omitempty"`
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classify decodes one data frame's payload into the patches the reducer
// should apply, in order. A nil slice with nil error is a legitimate no-op
// (metadata frames, empty content frames, unknown discriminants).
//
// Classification errors mean the whole payload was unusable; the caller
// logs and skips the frame. One bad frame must never abort the stream.
func Classify(raw string) ([]model.Patch, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	switch env.Type {
	case ChunkContent:
		return classifyContent(env), nil

	case ChunkTool:
		return classifyTool(env.Message)

	case ChunkMetadata:
		// Observed only; the backend sends retrieval diagnostics here.
		return nil, nil

	case ChunkEntity:
		entities, ok := parseEntities(env.Message)
		if !ok {
			return nil, fmt.Errorf("entity payload lacks entity shape: %.60q", env.Message)
		}
		return []model.Patch{model.EntityPatch{Entities: entities}}, nil

	default:
		// Unknown discriminants are skipped, not errors: the backend adds
		// chunk types faster than clients update.
		return nil, nil
	}
}

// classifyContent handles the type-4 ambiguity: the message string may be
// answer text, or it may be an entity payload that happens to travel on the
// content channel. A speculative parse decides; anything that is not the
// recognized entity shape falls back to literal text, including strings
// that parse as JSON but lack the shape.
func classifyContent(env Envelope) []model.Patch {
	var patches []model.Patch

	if env.ReasoningMessage != "" {
		patches = append(patches, model.ReasoningPatch{Text: env.ReasoningMessage})
	}

	if env.Message == "" {
		return patches
	}

	if entities, ok := parseEntities(env.Message); ok {
		return append(patches, model.EntityPatch{Entities: entities})
	}

	return append(patches, model.TextPatch{Text: env.Message})
}

// classifyTool handles type-5 payloads: a JSON array that is either a
// reference-group replacement (first element carries a nested "data" list)
// or a batch of tool-status records to upsert.
func classifyTool(message string) ([]model.Patch, error) {
	var groups []referenceGroupWire
	if err := json.Unmarshal([]byte(message), &groups); err != nil {
		return nil, fmt.Errorf("tool payload is not a JSON array: %w", err)
	}
	if len(groups) == 0 {
		return nil, nil
	}

	if groups[0].Data != nil {
		out := make([]model.ReferenceGroup, 0, len(groups))
		for _, g := range groups {
			out = append(out, g.toModel())
		}
		return []model.Patch{model.ReferencePatch{Groups: out}}, nil
	}

	var records []toolStatusWire
	if err := json.Unmarshal([]byte(message), &records); err != nil {
		return nil, fmt.Errorf("tool-status records: %w", err)
	}
	tools := make([]model.ToolStatus, 0, len(records))
	for _, r := range records {
		tools = append(tools, r.toModel())
	}
	return []model.Patch{model.ThoughtPatch{Tools: tools}}, nil
}

// =============================================================================
// WIRE SHAPES
// =============================================================================

// flexID tolerates backend ids arriving as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// flexText tolerates structured tool output: strings pass through, anything
// else keeps its raw JSON encoding for display.
type flexText string

func (f *flexText) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexText(v)
		return nil
	}
	*f = flexText(s)
	return nil
}

// toolStatusWire is one element of a type-5 tool-status array.
type toolStatusWire struct {
	ID            flexID   `json:"id"`
	Display       string   `json:"display"`
	Name          string   `json:"name"`
	Globalization string   `json:"globalization"`
	FuncName      string   `json:"func_name"`
	Status        string   `json:"status"`
	FuncOutput    flexText `json:"func_output"`
}

func (w toolStatusWire) toModel() model.ToolStatus {
	return model.ToolStatus{
		ID:            string(w.ID),
		Display:       w.Display,
		Name:          w.Name,
		Globalization: w.Globalization,
		FuncName:      w.FuncName,
		Status:        model.StepStatus(w.Status),
		Output:        string(w.FuncOutput),
	}
}

// referenceWire is one citation inside a reference group.
type referenceWire struct {
	ID            flexID `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	MatchSentence string `json:"match_sentence"`
	Matches       []struct {
		Prefix string `json:"prefix"`
		Match  string `json:"match"`
		Suffix string `json:"suffix"`
	} `json:"matches"`
}

// referenceGroupWire is one element of a type-5 reference array. The nested
// "data" list is what distinguishes it from a tool-status record.
type referenceGroupWire struct {
	Name          string          `json:"name"`
	Globalization string          `json:"globalization"`
	Data          []referenceWire `json:"data"`
}

func (w referenceGroupWire) toModel() model.ReferenceGroup {
	refs := make([]model.Reference, 0, len(w.Data))
	for _, r := range w.Data {
		ref := model.Reference{
			ID:            string(r.ID),
			Title:         r.Title,
			URL:           r.URL,
			MatchSentence: r.MatchSentence,
		}
		for _, m := range r.Matches {
			ref.Matches = append(ref.Matches, model.SentenceMatch{
				Prefix: m.Prefix, Match: m.Match, Suffix: m.Suffix,
			})
		}
		refs = append(refs, ref)
	}
	return model.ReferenceGroup{
		Name:          w.Name,
		Globalization: w.Globalization,
		Refs:          refs,
	}
}

// =============================================================================
// ENTITY PARSING
// =============================================================================

// diseaseWire, drugWire, symptomWire mirror the entity service's record
// shapes. Unknown extra fields are collected into the entity property map
// via the explicit fields below; nothing else survives the decode.
type diseaseWire struct {
	ID        flexID `json:"id"`
	Name      string `json:"disease_name"`
	Overview  string `json:"overview"`
	MatchWord string `json:"match_word"`
}

type drugWire struct {
	ID        flexID `json:"id"`
	DrugID    string `json:"drug_id"`
	Name      string `json:"med_name"`
	Component string `json:"component"`
	MatchWord string `json:"match_word"`
}

type symptomWire struct {
	ID        flexID `json:"id"`
	Name      string `json:"symptom_name"`
	Overview  string `json:"overview"`
	MatchWord string `json:"match_word"`
}

type entityListWire struct {
	Diseases []diseaseWire `json:"diseases"`
	Drugs    []drugWire    `json:"drugs"`
	Symptoms []symptomWire `json:"symptoms"`
}

// parseEntities speculatively decodes a message string as an entity-list
// payload. It reports ok only when the string is a JSON object carrying at
// least one of the recognized lists. A plain-text chunk that happens to be
// valid JSON does not qualify and falls back to literal text at the caller.
func parseEntities(message string) ([]model.EntityResult, bool) {
	trimmed := strings.TrimSpace(message)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var wire entityListWire
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return nil, false
	}
	if wire.Diseases == nil && wire.Drugs == nil && wire.Symptoms == nil {
		return nil, false
	}

	entities := make([]model.EntityResult, 0, len(wire.Diseases)+len(wire.Drugs)+len(wire.Symptoms))
	for _, d := range wire.Drugs {
		props := map[string]any{}
		if d.DrugID != "" {
			props["drug_id"] = d.DrugID
		}
		if d.MatchWord != "" {
			props["match_word"] = d.MatchWord
		}
		entities = append(entities, model.EntityResult{
			ID:          entityID(string(d.ID), len(entities)),
			Category:    model.EntityDrug,
			Name:        d.Name,
			Description: d.Component,
			Properties:  props,
		})
	}
	for _, d := range wire.Diseases {
		props := map[string]any{}
		if d.MatchWord != "" {
			props["match_word"] = d.MatchWord
		}
		entities = append(entities, model.EntityResult{
			ID:          entityID(string(d.ID), len(entities)),
			Category:    model.EntityDisease,
			Name:        d.Name,
			Description: d.Overview,
			Properties:  props,
		})
	}
	for _, s := range wire.Symptoms {
		props := map[string]any{}
		if s.MatchWord != "" {
			props["match_word"] = s.MatchWord
		}
		entities = append(entities, model.EntityResult{
			ID:          entityID(string(s.ID), len(entities)),
			Category:    model.EntitySymptom,
			Name:        s.Name,
			Description: s.Overview,
			Properties:  props,
		})
	}
	return entities, true
}

// entityID falls back to a positional id when the backend omits one, so
// entities stay addressable in the UI.
func entityID(id string, pos int) string {
	if id != "" {
		return id
	}
	return "ent_" + strconv.Itoa(pos)
}
