// Package extraction turns free-text complaint descriptions into typed
// complaint fields by prompting a generative model and normalizing its reply.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hosteldesk/backend/internal/gemini"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Generator is the generative text endpoint.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StructuredFields is the normalized output of Extract.
type StructuredFields struct {
	Category         models.Category
	MessageType      models.MessageType
	PriorityLevel    models.PriorityLevel
	SubCategory      string
	SpecificCategory string
	Block            string
	SubBlock         string
	RoomNo           string
	RoomType         string
	BuildingCode     string
	Defaulted        []string
}

// ScoredFields is the normalized output of ExtractScored.
type ScoredFields struct {
	Category          models.Category
	SubCategory       string
	RoomNo            string
	Block             string
	RoomType          string
	PriorityScore     int
	PreferredTimeSlot string
	Defaulted         []string
}

type Extractor struct {
	generator Generator
	logger    *logrus.Logger
}

func NewExtractor(generator Generator, logger *logrus.Logger) *Extractor {
	return &Extractor{
		generator: generator,
		logger:    logger,
	}
}

// Extract classifies a description into the label-priority field set.
// Category, message type and priority must all map onto their enums or the
// whole extraction is rejected.
func (e *Extractor) Extract(ctx context.Context, description string) (*StructuredFields, error) {
	if strings.TrimSpace(description) == "" {
		return nil, gemini.ErrEmptyText
	}

	prompt := gemini.ComposePrompt(StructuredPrompt(), "", description)
	bag, err := e.generateBag(ctx, prompt)
	if err != nil {
		return nil, err
	}

	category := Enum(bag["category"], models.Categories)
	messageType := Enum(bag["message_type"], models.MessageTypes)
	priority := Enum(bag["priority_level"], models.PriorityLevels)

	var missing []string
	if category.Kind == Rejected {
		missing = append(missing, "category")
	}
	if messageType.Kind == Rejected {
		missing = append(missing, "message_type")
	}
	if priority.Kind == Rejected {
		missing = append(missing, "priority_level")
	}
	if len(missing) > 0 {
		e.logger.WithFields(logrus.Fields{
			"missing":  missing,
			"category": bag["category"],
			"message":  bag["message_type"],
			"priority": bag["priority_level"],
		}).Warn("AI did not return required fields")
		return nil, &gemini.Error{
			Kind: gemini.KindRejected,
			Hint: "AI did not return required fields: " + strings.Join(missing, ", "),
		}
	}

	fields := &StructuredFields{
		Category:      category.Value,
		MessageType:   messageType.Value,
		PriorityLevel: priority.Value,
	}
	fields.SubCategory, _ = Clean(bag["sub_category"])
	fields.SpecificCategory, _ = Clean(bag["specific_category"])
	fields.Block, _ = Clean(bag["block"])
	fields.SubBlock, _ = Clean(bag["sub_block"])
	fields.RoomNo, _ = Clean(bag["room_no"])
	fields.BuildingCode, _ = Clean(bag["building_code"])

	if _, present := Clean(bag["room_type"]); present {
		roomType := RoomTypeOr(bag["room_type"], models.RoomSingle)
		fields.RoomType = roomType.Value
		if roomType.Kind == Defaulted {
			fields.Defaulted = append(fields.Defaulted, "room_type")
		}
	}

	e.logger.WithFields(logrus.Fields{
		"category":  fields.Category,
		"priority":  fields.PriorityLevel,
		"defaulted": fields.Defaulted,
	}).Debug("Structured fields extracted")

	return fields, nil
}

// ExtractScored classifies a description into the integer-priority field
// set. Only the category is mandatory; every other field falls back to a
// placeholder.
func (e *Extractor) ExtractScored(ctx context.Context, description string) (*ScoredFields, error) {
	if strings.TrimSpace(description) == "" {
		return nil, gemini.ErrEmptyText
	}

	bag, err := e.generateBag(ctx, ScoredPrompt(description))
	if err != nil {
		return nil, err
	}

	category := Enum(bag["category"], models.Categories)
	if category.Kind == Rejected {
		e.logger.WithField("category", bag["category"]).Warn("AI returned an unknown category")
		return nil, &gemini.Error{Kind: gemini.KindRejected, Hint: "AI did not return a valid category"}
	}

	fields := &ScoredFields{Category: category.Value}
	track := func(name string, kind Kind) {
		if kind == Defaulted {
			fields.Defaulted = append(fields.Defaulted, name)
		}
	}

	sub := TextOr(bag["subCategory"], "General")
	fields.SubCategory = sub.Value
	track("subCategory", sub.Kind)

	room := TextOr(bag["roomNo"], "UNKNOWN")
	fields.RoomNo = room.Value
	track("roomNo", room.Kind)

	block := TextOr(bag["block"], "UNKNOWN")
	fields.Block = block.Value
	track("block", block.Kind)

	roomType := RoomTypeOr(bag["roomType"], models.RoomSingle)
	fields.RoomType = roomType.Value
	track("roomType", roomType.Kind)

	score := ScoreOr(bag["priorityLevel"], models.DefaultPriorityScore)
	fields.PriorityScore = score.Value
	track("priorityLevel", score.Kind)

	slot := TextOr(bag["preferredTimeSlot"], "Any")
	fields.PreferredTimeSlot = slot.Value
	track("preferredTimeSlot", slot.Kind)

	e.logger.WithFields(logrus.Fields{
		"category":  fields.Category,
		"priority":  fields.PriorityScore,
		"defaulted": fields.Defaulted,
	}).Debug("Scored fields extracted")

	return fields, nil
}

func (e *Extractor) generateBag(ctx context.Context, prompt string) (map[string]string, error) {
	reply, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate complaint fields: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, &gemini.Error{Kind: gemini.KindEmptyReply, Hint: "AI response was empty"}
	}

	object, found := ExtractJSONObject(reply)
	if !found {
		e.logger.WithField("reply_length", len(reply)).Warn("AI response did not contain JSON")
		return nil, &gemini.Error{Kind: gemini.KindUnparseable, Hint: "AI response did not contain JSON"}
	}

	bag, err := parseBag(object)
	if err != nil {
		e.logger.WithError(err).Warn("Failed to parse AI JSON response")
		return nil, &gemini.Error{Kind: gemini.KindUnparseable, Hint: "AI response JSON parse failed", Err: err}
	}
	return bag, nil
}

// ExtractJSONObject finds the first balanced {...} span in a model reply,
// looking inside a ```json fence when there is one. If braces never balance
// it falls back to the first '{' through the last '}'.
func ExtractJSONObject(reply string) (string, bool) {
	text := stripFence(reply)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func stripFence(reply string) string {
	const fence = "```"
	open := strings.Index(reply, fence)
	if open < 0 {
		return strings.TrimSpace(reply)
	}
	body := reply[open+len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.Contains(body[:nl], "{") {
		body = body[nl+1:]
	}
	if close := strings.Index(body, fence); close >= 0 {
		body = body[:close]
	}
	return strings.TrimSpace(body)
}

// parseBag decodes a JSON object into strings. Numbers and booleans keep
// their literal text, nulls are dropped, nested values are re-encoded.
func parseBag(object string) (map[string]string, error) {
	dec := json.NewDecoder(strings.NewReader(object))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	bag := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			bag[k] = val
		case json.Number:
			bag[k] = val.String()
		case bool:
			if val {
				bag[k] = "true"
			} else {
				bag[k] = "false"
			}
		default:
			var buf bytes.Buffer
			if err := json.NewEncoder(&buf).Encode(val); err == nil {
				bag[k] = strings.TrimSpace(buf.String())
			}
		}
	}
	return bag, nil
}
